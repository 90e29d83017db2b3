package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertQuery(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e := Entry{
		EventID:    "ev-1",
		OrderID:    "o1",
		EventType:  "OrderCreated",
		Status:     "pending",
		Payload:    json.RawMessage(`{"order_id":"o1"}`),
		OccurredAt: at,
	}

	query, args, err := insertQuery(e).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO order_audit (event_id,order_id,event_type,status,payload,occurred_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (event_id) DO NOTHING",
		query)
	assert.Equal(t, []any{"ev-1", "o1", "OrderCreated", "pending", []byte(`{"order_id":"o1"}`), at}, args)
}
