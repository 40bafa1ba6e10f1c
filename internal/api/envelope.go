package api

import "encoding/json"

// envelope is the wrapped backend response shape. Data stays raw so the
// payload can be decoded into whatever type the caller expects.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Unwrap normalizes the two observed backend response shapes into one
// payload: either a wrapper carrying the payload under "data" plus an
// optional message, or the bare payload itself. The returned message is
// empty for bare responses. A nil out discards the payload.
func Unwrap(raw []byte, out any) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		if out == nil {
			return env.Message, nil
		}
		return env.Message, json.Unmarshal(env.Data, out)
	}
	if out == nil {
		return "", nil
	}
	return "", json.Unmarshal(raw, out)
}
