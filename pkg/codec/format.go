package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstudio/pkg/model"
)

// Format selects the encoding used by Encode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat normalises a format name. Empty input yields JSON.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("codec: unknown format %q", raw)
	}
}

// Decode parses a persisted form from JSON or YAML.
func Decode(data []byte) (PersistedForm, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return PersistedForm{}, ErrEmptyDocument
	}

	var form PersistedForm
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &form); err != nil {
			return PersistedForm{}, fmt.Errorf("%w: json: %v", ErrInvalidDocument, err)
		}
		return form, nil
	}
	if err := yaml.Unmarshal(trimmed, &form); err != nil {
		return PersistedForm{}, fmt.Errorf("%w: yaml: %v", ErrInvalidDocument, err)
	}
	return form, nil
}

// Encode renders form in the requested format. JSON output is indented.
func Encode(form PersistedForm, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(form)
	case FormatJSON, "":
		out, err := json.MarshalIndent(form, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("codec: unknown format %q", format)
	}
}

// LoadDocument decodes data and hydrates the editable document.
func LoadDocument(data []byte) (model.Document, error) {
	form, err := Decode(data)
	if err != nil {
		return model.Document{}, err
	}
	return FromPersisted(form)
}
