package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"entmatch/internal/textutil"
)

func parseJSON(data []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid("JSON file is empty")
		}
		return nil, invalid(fmt.Sprintf("Failed to parse JSON: %v", err))
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid("Failed to parse JSON: unexpected data after top-level value")
	}
	return extractRecords(doc, formatJSON)
}

func parseYAML(data []byte) ([]string, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalid(fmt.Sprintf("Failed to parse YAML: %v", err))
	}
	if doc == nil {
		return nil, invalid("YAML array is empty")
	}
	return extractRecords(doc, formatYAML)
}

// extractRecords applies the shared element rules to a decoded document.
// Any invalid element fails the whole file.
func extractRecords(doc any, f format) ([]string, error) {
	label := f.label()
	items, ok := doc.([]any)
	if !ok {
		return nil, invalid(fmt.Sprintf("%s must be an array of objects", label))
	}
	if len(items) == 0 {
		return nil, invalid(fmt.Sprintf("%s array is empty", label))
	}

	names := make([]string, 0, len(items))
	for index, item := range items {
		var raw string
		switch v := item.(type) {
		case string:
			raw = v
		case map[string]any:
			value, found := recordName(v)
			if !found {
				return nil, &ValidationError{
					Message: fmt.Sprintf(`Item at index %d must have a "names" or "name" field`, index),
					Index:   index,
				}
			}
			raw = value
		default:
			return nil, &ValidationError{
				Message: fmt.Sprintf(`Item at index %d must be a string or object with "names"/"name" field`, index),
				Index:   index,
			}
		}
		if name := textutil.CleanName(raw); name != "" {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil, invalid(fmt.Sprintf("No valid names found in the %s file", label))
	}
	return names, nil
}

// recordName prefers a non-blank "names" value and falls back to "name".
func recordName(record map[string]any) (string, bool) {
	names, hasNames := record["names"].(string)
	if hasNames && textutil.CleanName(names) != "" {
		return names, true
	}
	if name, ok := record["name"].(string); ok {
		return name, true
	}
	return names, hasNames
}
