package quesimg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/k1LoW/errors"
)

// Result pairs an entry key with its img tag.
type Result struct {
	Key string
	Tag string
}

// ResultSet is the ordered collection of tags produced by a batch. It
// marshals to a JSON object whose members keep insertion order.
type ResultSet struct {
	results []Result
	index   map[string]int
}

// Add appends key, or replaces its tag in place when key is already present.
func (rs *ResultSet) Add(key, tag string) {
	if rs.index == nil {
		rs.index = map[string]int{}
	}
	if i, ok := rs.index[key]; ok {
		rs.results[i].Tag = tag
		return
	}
	rs.index[key] = len(rs.results)
	rs.results = append(rs.results, Result{Key: key, Tag: tag})
}

func (rs *ResultSet) Get(key string) (string, bool) {
	i, ok := rs.index[key]
	if !ok {
		return "", false
	}
	return rs.results[i].Tag, true
}

func (rs *ResultSet) Len() int { return len(rs.results) }

// Results returns a copy of the pairs in order.
func (rs *ResultSet) Results() []Result {
	return append([]Result(nil), rs.results...)
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for i, r := range rs.results {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, r.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeString(buf, r.Tag); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeResultSet renders rs as a JSON object indented by two spaces. HTML
// characters in the tags are written as is.
func EncodeResultSet(rs *ResultSet) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return nil, fmt.Errorf("encode result set: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteResultSet writes rs to path, staging it next to the target and
// renaming it into place. It returns the absolute path written.
func WriteResultSet(path string, rs *ResultSet) (_ string, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	b, err := EncodeResultSet(rs)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := writeFileAtomic(abs, b); err != nil {
		return "", err
	}
	return abs, nil
}
