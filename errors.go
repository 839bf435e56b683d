package quesimg

import "errors"

// Error kinds reported by the renderer. Match them with errors.Is.
var (
	// ErrConfig reports a configuration value that cannot be used.
	ErrConfig = errors.New("invalid configuration")
	// ErrFontLoad reports a font that could not be read or parsed. LoadFont
	// recovers from it by substituting the bundled font.
	ErrFontLoad = errors.New("font load failed")
	// ErrIO reports an unreadable input or an unwritable output.
	ErrIO = errors.New("i/o failure")
	// ErrInvalidDimension reports a non-positive canvas size.
	ErrInvalidDimension = errors.New("invalid canvas dimension")
	// ErrInvalidKey reports an input key that cannot be used as a file name.
	ErrInvalidKey = errors.New("invalid entry key")
)
