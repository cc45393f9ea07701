package client

import "encoding/json"

// EventType is the stream-json "type" field.
type EventType string

const (
	EventSystem    EventType = "system"
	EventAssistant EventType = "assistant"
	EventUser      EventType = "user"
	EventResult    EventType = "result"
)

// streamEvent is the subset of the runner's stream-json line format needed
// to read the final report:
//
//	{"type":"system","subtype":"init","session_id":"..."}
//	{"type":"assistant","message":{...}}
//	{"type":"result","subtype":"success","is_error":false,"result":"...","duration_ms":1234}
type streamEvent struct {
	Type         EventType       `json:"type"`
	SubType      string          `json:"subtype,omitempty"`
	SessionID    string          `json:"session_id,omitempty"`
	IsError      bool            `json:"is_error,omitempty"`
	Result       string          `json:"result,omitempty"`
	DurationMs   int64           `json:"duration_ms,omitempty"`
	TotalCostUSD float64         `json:"total_cost_usd,omitempty"`
	Error        json.RawMessage `json:"error,omitempty"`
}

// ResultEvent is the runner's final report for one invocation.
type ResultEvent struct {
	SubType      string
	SessionID    string
	IsError      bool
	Result       string
	DurationMs   int64
	TotalCostUSD float64
	ErrorMessage string
}
