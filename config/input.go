package config

import (
	"fmt"
	"os"

	"github.com/arran4/quesimg"
	"github.com/goccy/go-yaml"
)

// LoadInput reads the input document at path: a mapping of entry key to
// text body. Entries are returned in document order.
func LoadInput(path string) ([]quesimg.Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read input: %w", quesimg.ErrIO, err)
	}
	return ParseInput(b)
}

// ParseInput decodes an input document. Duplicate keys are rejected.
// Numbers and booleans are taken as their text, null as an empty body;
// nested sequences or mappings are an error.
func ParseInput(b []byte) ([]quesimg.Entry, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(b, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal input: %w", quesimg.ErrIO, err)
	}
	var ms yaml.MapSlice
	switch t := v.(type) {
	case nil:
	case yaml.MapSlice:
		ms = t
	default:
		return nil, fmt.Errorf("%w: input must be a mapping of key to text, got %T", quesimg.ErrIO, v)
	}
	entries := make([]quesimg.Entry, 0, len(ms))
	seen := make(map[string]struct{}, len(ms))
	for _, item := range ms {
		key, err := scalarText(item.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: input key: %w", quesimg.ErrIO, err)
		}
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: duplicate input key %q", quesimg.ErrIO, key)
		}
		seen[key] = struct{}{}
		body, err := scalarText(item.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: input %q: %w", quesimg.ErrIO, key, err)
		}
		entries = append(entries, quesimg.Entry{Key: key, Text: body})
	}
	return entries, nil
}

func scalarText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(t), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}
