package quesimg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/k1LoW/errors"
	"golang.org/x/image/font"
)

const (
	DefaultWidth      = 400
	DefaultMinHeight  = 100
	DefaultWrapFactor = 8
)

// Generator renders text entries into PNG images and img tags. One
// Generator runs jobs one after another; it is not safe for concurrent use.
type Generator struct {
	face            font.Face
	width           int
	minHeight       int
	wrapFactor      int
	margin          int
	palette         Palette
	baseDir         string
	markdown        bool
	breakLongWords  bool
	continueOnError bool
	escapeAlt       bool
	jobTimeout      time.Duration
	logger          *slog.Logger
}

type Option func(*Generator) error

// WithFont sets the face used for measuring and drawing.
func WithFont(face font.Face) Option {
	return func(g *Generator) error {
		if face == nil {
			return fmt.Errorf("%w: nil font face", ErrConfig)
		}
		g.face = face
		return nil
	}
}

func WithWidth(px int) Option {
	return func(g *Generator) error {
		if px <= 0 {
			return fmt.Errorf("%w: width must be positive, got %d", ErrConfig, px)
		}
		g.width = px
		return nil
	}
}

// WithMinHeight sets the smallest canvas height. Taller text grows the
// canvas beyond it.
func WithMinHeight(px int) Option {
	return func(g *Generator) error {
		if px <= 0 {
			return fmt.Errorf("%w: minimum height must be positive, got %d", ErrConfig, px)
		}
		g.minHeight = px
		return nil
	}
}

// WithWrapFactor sets the divisor turning the canvas width into the wrap
// width in characters.
func WithWrapFactor(n int) Option {
	return func(g *Generator) error {
		if n <= 0 {
			return fmt.Errorf("%w: wrap factor must be positive, got %d", ErrConfig, n)
		}
		g.wrapFactor = n
		return nil
	}
}

func WithMargin(px int) Option {
	return func(g *Generator) error {
		if px < 0 {
			return fmt.Errorf("%w: margin must not be negative, got %d", ErrConfig, px)
		}
		g.margin = px
		return nil
	}
}

func WithPalette(p Palette) Option {
	return func(g *Generator) error {
		if p.BG != nil {
			g.palette.BG = p.BG
		}
		if p.FG != nil {
			g.palette.FG = p.FG
		}
		return nil
	}
}

// WithBaseDir sets the directory PNG files are written to.
func WithBaseDir(dir string) Option {
	return func(g *Generator) error {
		g.baseDir = dir
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger != nil {
			g.logger = logger
		}
		return nil
	}
}

// WithMarkdown treats text bodies as Markdown and flattens them before
// wrapping.
func WithMarkdown(enable bool) Option {
	return func(g *Generator) error {
		g.markdown = enable
		return nil
	}
}

func WithBreakLongWords(enable bool) Option {
	return func(g *Generator) error {
		g.breakLongWords = enable
		return nil
	}
}

// WithContinueOnError keeps a batch going after a failed entry. Failures
// are reported in the Report returned by Generate.
func WithContinueOnError(enable bool) Option {
	return func(g *Generator) error {
		g.continueOnError = enable
		return nil
	}
}

// WithEscapeAlt HTML-escapes keys in the alt attribute.
func WithEscapeAlt(enable bool) Option {
	return func(g *Generator) error {
		g.escapeAlt = enable
		return nil
	}
}

// WithJobTimeout bounds the time spent on each entry. Zero disables it.
func WithJobTimeout(d time.Duration) Option {
	return func(g *Generator) error {
		if d < 0 {
			return fmt.Errorf("%w: job timeout must not be negative", ErrConfig)
		}
		g.jobTimeout = d
		return nil
	}
}

// New returns a Generator. Without WithFont the bundled Go Regular face at
// 16pt is used.
func New(opts ...Option) (_ *Generator, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	g := &Generator{
		width:      DefaultWidth,
		minHeight:  DefaultMinHeight,
		wrapFactor: DefaultWrapFactor,
		margin:     DefaultMargin,
		palette:    DefaultPalette,
		baseDir:    ".",
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.WrapWidth() == 0 {
		return nil, fmt.Errorf("%w: wrap factor %d leaves no characters per line at width %d", ErrConfig, g.wrapFactor, g.width)
	}
	if g.face == nil {
		ff, err := DefaultFont(defaultFontSize)
		if err != nil {
			return nil, err
		}
		g.face = ff.Face
	}
	return g, nil
}

// WrapWidth is the per-line character limit: width / wrap factor.
func (g *Generator) WrapWidth() int {
	return g.width / g.wrapFactor
}

// Asset is the result of one job.
type Asset struct {
	Key     string
	PNG     []byte
	Path    string
	DataURI string
	Tag     string
	Width   int
	Height  int
	Lines   LineBlock
}

// Render runs a single job: layout, canvas, drawing and encoding. The image
// is written to key+".png" in the base directory.
func (g *Generator) Render(ctx context.Context, key, body string) (_ *Asset, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if g.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.jobTimeout)
		defer cancel()
	}
	if g.markdown {
		body = FlattenMarkdown([]byte(body))
	}
	block := Layout(body, g.WrapWidth(), g.face, WrapOptions{BreakLongWords: g.breakLongWords})
	height := CanvasHeight(block.Height(), g.margin, g.minHeight)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := NewCanvas(g.width, height, g.palette.BG)
	if err != nil {
		return nil, err
	}
	c.DrawLines(block, g.face, g.palette.FG, g.margin)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := EncodePNG(c.Image())
	if err != nil {
		return nil, err
	}
	path, err := PersistToFile(data, g.baseDir, key+".png")
	if err != nil {
		return nil, err
	}
	uri := EncodeDataURI(data)
	tag := BuildHTMLTag(key, uri)
	if g.escapeAlt {
		tag = BuildEscapedHTMLTag(key, uri)
	}
	g.logger.Debug("rendered entry",
		slog.String("key", key),
		slog.Int("lines", len(block)),
		slog.Int("width", g.width),
		slog.Int("height", height),
		slog.String("path", path),
	)
	return &Asset{
		Key:     key,
		PNG:     data,
		Path:    path,
		DataURI: uri,
		Tag:     tag,
		Width:   g.width,
		Height:  height,
		Lines:   block,
	}, nil
}

// Entry is one (key, text) input pair.
type Entry struct {
	Key  string
	Text string
}

// EntryError is a failed job.
type EntryError struct {
	Key string
	Err error
}

func (e *EntryError) Error() string { return fmt.Sprintf("entry %q: %v", e.Key, e.Err) }

func (e *EntryError) Unwrap() error { return e.Err }

// Report summarizes a batch.
type Report struct {
	Rendered []*Asset
	Failures []*EntryError
}

// Generate renders entries in order. By default the first failure aborts
// the batch and is returned as an *EntryError; images already written stay
// on disk. With WithContinueOnError failures are collected in the Report.
// Cancelling ctx always stops the batch.
func (g *Generator) Generate(ctx context.Context, entries []Entry) (*ResultSet, *Report, error) {
	rs := &ResultSet{}
	report := &Report{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return rs, report, errors.WithStack(err)
		}
		asset, err := g.Render(ctx, e.Key, e.Text)
		if err != nil {
			ee := &EntryError{Key: e.Key, Err: err}
			if !g.continueOnError || ctx.Err() != nil {
				return rs, report, ee
			}
			g.logger.Warn("skipping entry", slog.String("key", e.Key), slog.String("error", err.Error()))
			report.Failures = append(report.Failures, ee)
			continue
		}
		g.logger.Info("generated image", slog.String("key", e.Key), slog.String("path", asset.Path))
		report.Rendered = append(report.Rendered, asset)
		rs.Add(e.Key, asset.Tag)
	}
	return rs, report, nil
}
