package redisx

import (
	"fmt"
	"time"
)

const (
	// Entity snapshots: product:{id}, order:{id}, user:{email}
	keyProduct = "product:%s"
	keyOrder   = "order:%s"
	keyUser    = "user:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	keyDedup = "dedup:%s:%s"
)

var (
	TTLEntity = time.Hour
	TTLDedup  = 48 * time.Hour
)

func ProductKey(id string) string { return fmt.Sprintf(keyProduct, id) }
func OrderKey(id string) string   { return fmt.Sprintf(keyOrder, id) }
func UserKey(email string) string { return fmt.Sprintf(keyUser, email) }

func DedupKey(service, id string) string { return fmt.Sprintf(keyDedup, service, id) }
