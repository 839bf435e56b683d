package quesimg

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/k1LoW/errors"
)

const dataURIPrefix = "data:image/png;base64,"

// EncodePNG serializes img as PNG. The encoding is deterministic, so the
// same image always yields the same bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// PersistToFile writes data to name inside baseDir and returns the absolute
// path. The file is staged under a temporary name and renamed into place so
// that a failed write never leaves a truncated image behind.
func PersistToFile(data []byte, baseDir, name string) (_ string, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q escapes the output directory", ErrInvalidKey, name)
	}
	dst, err := filepath.Abs(filepath.Join(baseDir, name))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := writeFileAtomic(dst, data); err != nil {
		return "", err
	}
	return dst, nil
}

func writeFileAtomic(dst string, data []byte) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, dst, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, dst, err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// EncodeDataURI wraps PNG bytes in a base64 data URI.
func EncodeDataURI(data []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI reverses EncodeDataURI.
func DecodeDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("not a png data uri")
	}
	return base64.StdEncoding.DecodeString(payload)
}

// BuildHTMLTag returns an img tag for dataURI with key as the alt text.
// key is inserted verbatim: quotes or angle brackets in it break the tag.
// Use BuildEscapedHTMLTag when keys are not trusted.
func BuildHTMLTag(key, dataURI string) string {
	return `<img src="` + dataURI + `" alt="` + key + `">`
}

// BuildEscapedHTMLTag is BuildHTMLTag with key HTML-escaped.
func BuildEscapedHTMLTag(key, dataURI string) string {
	return BuildHTMLTag(html.EscapeString(key), dataURI)
}
