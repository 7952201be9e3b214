package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MediaRef is an opaque reference to an uploaded asset. The core stores and
// forwards it without inspecting it.
type MediaRef struct {
	ID  string `json:"id" yaml:"id"`
	URL string `json:"url" yaml:"url"`
}

// UnmarshalJSON accepts the id as a JSON string or number; upload services
// disagree on which one they return.
func (m *MediaRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID  json.RawMessage `json:"id"`
		URL string          `json:"url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := bytes.TrimSpace(raw.ID)
	switch {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
		m.ID = ""
	case id[0] == '"':
		if err := json.Unmarshal(id, &m.ID); err != nil {
			return err
		}
	default:
		var n json.Number
		if err := json.Unmarshal(id, &n); err != nil {
			return fmt.Errorf("model: media id %s: %w", id, err)
		}
		m.ID = n.String()
	}
	m.URL = raw.URL
	return nil
}
