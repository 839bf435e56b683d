package quesimg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"github.com/k1LoW/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Faces are created at 72 DPI so that a size in points is also a size in
// pixels.
const fontDPI = 72

const defaultFontSize = 16

// FontSource tells where a resolved face came from.
type FontSource int

const (
	// FontLoaded means the requested font was read and parsed.
	FontLoaded FontSource = iota
	// FontFallback means the bundled Go Regular font is used instead.
	FontFallback
)

func (s FontSource) String() string {
	switch s {
	case FontLoaded:
		return "loaded"
	case FontFallback:
		return "fallback"
	default:
		return fmt.Sprintf("FontSource(%d)", int(s))
	}
}

type FontAndFace struct {
	Face font.Face
	Size float64
}

// FontResult is the outcome of LoadFont. Face is always usable.
type FontResult struct {
	*FontAndFace
	Source FontSource
	// Path is the file the face was read from. Empty for the fallback.
	Path string
	// Cause is the error that forced the fallback, if any.
	Cause error
}

func loadFontAndFace(ttfBytes []byte, size float64) (*FontAndFace, error) {
	if ft, err := truetype.Parse(ttfBytes); err == nil {
		face := truetype.NewFace(ft, &truetype.Options{Size: size, DPI: fontDPI, Hinting: font.HintingFull})
		return &FontAndFace{Face: face, Size: size}, nil
	}
	// truetype only understands glyf outlines; CFF based OpenType goes here.
	otf, err := opentype.Parse(ttfBytes)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: fontDPI, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	return &FontAndFace{Face: face, Size: size}, nil
}

// findSystemFont is findfont.Find, replaceable in tests.
var findSystemFont = findfont.Find

// resolveFontPath returns p when it names a readable file, otherwise it
// looks the base name up among the installed system fonts. Only a font
// with exactly that file name counts; findfont also returns partial name
// matches, which would swap in an unrelated font.
func resolveFontPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("no font path configured")
	}
	if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
		return p, nil
	}
	base := filepath.Base(p)
	found, err := findSystemFont(base)
	if err != nil {
		return "", fmt.Errorf("font %q not found: %w", p, err)
	}
	if !strings.EqualFold(filepath.Base(found), base) {
		return "", fmt.Errorf("font %q not found: closest system font is %s", p, found)
	}
	return found, nil
}

// LoadFont resolves a face for path at size. When the font cannot be found
// or parsed the bundled Go Regular face is returned with Source set to
// FontFallback and Cause wrapping ErrFontLoad. The error is only non-nil if
// the bundled font itself fails to parse.
func LoadFont(path string, size float64) (FontResult, error) {
	if size <= 0 {
		size = defaultFontSize
	}
	resolved, err := resolveFontPath(path)
	if err == nil {
		var b []byte
		b, err = os.ReadFile(resolved)
		if err == nil {
			var ff *FontAndFace
			ff, err = loadFontAndFace(b, size)
			if err == nil {
				return FontResult{FontAndFace: ff, Source: FontLoaded, Path: resolved}, nil
			}
		}
	}
	cause := fmt.Errorf("%w: %w", ErrFontLoad, err)
	ff, err := DefaultFont(size)
	if err != nil {
		return FontResult{}, err
	}
	return FontResult{FontAndFace: ff, Source: FontFallback, Cause: cause}, nil
}

// DefaultFont returns the bundled Go Regular face at size.
func DefaultFont(size float64) (*FontAndFace, error) {
	if size <= 0 {
		size = defaultFontSize
	}
	ff, err := loadFontAndFace(goregular.TTF, size)
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("bundled font: %w", err))
	}
	return ff, nil
}
