package hrapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// envelope is the HR API response wrapper. Failures reported with HTTP 200 carry Error and Code.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// errorBody covers FastAPI style rejections: detail is a string or a list of {msg}.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// unwrapList decodes a list payload, tolerating the upstream habit of nesting the list inside another list.
func unwrapList(raw json.RawMessage, dest interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return json.Unmarshal([]byte("[]"), dest)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode list payload: %w", err)
	}
	if len(items) > 0 && isArray(items[0]) {
		raw = items[0]
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode list payload: %w", err)
	}
	return nil
}

// unwrapOne decodes a single resource that the upstream returns as a one-element list.
func unwrapOne(raw json.RawMessage, dest interface{}) error {
	raw = bytes.TrimSpace(raw)
	if isArray(raw) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		if len(items) == 0 {
			return fmt.Errorf("decode payload: empty data")
		}
		raw = bytes.TrimSpace(items[0])
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// parseDetail extracts the human readable message from an error body, or "" when none is present.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(eb.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil && len(items) > 0 {
		return strings.TrimSpace(items[0].Msg)
	}
	return ""
}

// embeddedFailure reports an error envelope returned with a 2xx status.
func (e envelope) embeddedFailure() *Error {
	if e.Code < http.StatusBadRequest {
		return nil
	}
	detail := strings.TrimSpace(e.Message)
	if detail == "" {
		var text string
		if err := json.Unmarshal(e.Error, &text); err == nil {
			detail = strings.TrimSpace(text)
		}
	}
	return &Error{Status: e.Code, Detail: detail}
}
