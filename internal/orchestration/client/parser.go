package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ErrSkipEvent is returned for lines that carry no result information.
var ErrSkipEvent = errors.New("skip event")

// maxLineSize bounds a single stream-json line. Assistant messages with large
// tool outputs can exceed bufio's default.
const maxLineSize = 4 * 1024 * 1024

// ParseLine decodes one stream-json line. Only result events are returned;
// everything else yields ErrSkipEvent.
func ParseLine(data []byte) (ResultEvent, error) {
	var raw streamEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return ResultEvent{}, err
	}
	if raw.Type != EventResult {
		return ResultEvent{}, ErrSkipEvent
	}

	ev := ResultEvent{
		SubType:      raw.SubType,
		SessionID:    raw.SessionID,
		IsError:      raw.IsError,
		Result:       raw.Result,
		DurationMs:   raw.DurationMs,
		TotalCostUSD: raw.TotalCostUSD,
		ErrorMessage: parsePolymorphicError(raw.Error),
	}
	if strings.HasPrefix(raw.SubType, "error") {
		ev.IsError = true
	}
	return ev, nil
}

// parsePolymorphicError accepts either a string or {"message": "..."}.
func parsePolymorphicError(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return string(raw)
}

// ScanResult reads stream-json lines from r and returns the last result
// event. Non-JSON lines are ignored. ok is false when no result was seen.
func ScanResult(r io.Reader) (ev ResultEvent, ok bool, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		parsed, perr := ParseLine(line)
		if perr != nil {
			continue
		}
		ev, ok = parsed, true
	}
	return ev, ok, scanner.Err()
}
