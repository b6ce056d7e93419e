package messages

import "encoding/json"

// ResultQueueMessage is the envelope of every message published for a run.
// RunID is shared by all messages of one invocation.
type ResultQueueMessage struct {
	Type    string          `json:"type"`
	RunID   string          `json:"run_id"`
	Payload json.RawMessage `json:"payload"`
}
