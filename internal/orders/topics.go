package orders

// Default topic for order lifecycle events; overridable with KAFKA_TOPIC.
const TopicOrderLifecycle = "order.lifecycle"

// Partition key = order_id, so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
