package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/arran4/quesimg"
	"github.com/goccy/go-yaml"
)

const (
	DefaultOutputJSONFile = "output_html_tags.json"
	DefaultBackground     = "white"
	DefaultForeground     = "black"
)

// Config is the render configuration. It is read once and not changed
// afterwards.
type Config struct {
	FontPath       string
	FontSize       int
	OutputWidth    int
	OutputHeight   int
	WrapFactor     int
	OutputJSONFile string
	// OutputDir is where PNG files go. Relative values are resolved against
	// the directory of the config file. Empty means the caller decides.
	OutputDir       string
	Margin          int
	Background      color.Color
	Foreground      color.Color
	Markdown        bool
	BreakLongWords  bool
	ContinueOnError bool
	JobTimeout      time.Duration
	// UnknownKeys lists top-level keys the document set but nothing reads,
	// sorted. They are tolerated so callers can warn about them.
	UnknownKeys []string
}

// document mirrors the file layout. Pointers tell a missing key apart from
// a zero value.
type document struct {
	FontPath        *string `yaml:"font_path"`
	FontSize        *int    `yaml:"font_size"`
	OutputWidth     *int    `yaml:"output_width"`
	OutputHeight    *int    `yaml:"output_height"`
	WrapFactor      *int    `yaml:"wrap_factor"`
	OutputJSONFile  *string `yaml:"output_json_file,omitempty"`
	OutputDir       *string `yaml:"output_dir,omitempty"`
	Margin          *int    `yaml:"margin,omitempty"`
	Background      *string `yaml:"background,omitempty"`
	Foreground      *string `yaml:"foreground,omitempty"`
	Markdown        bool    `yaml:"markdown,omitempty"`
	BreakLongWords  bool    `yaml:"break_long_words,omitempty"`
	ContinueOnError bool    `yaml:"continue_on_error,omitempty"`
	JobTimeout      string  `yaml:"job_timeout,omitempty"`
}

// Load reads and validates the configuration file at path. YAML and JSON
// are both accepted.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config: %w", quesimg.ErrIO, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir != "" && !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(filepath.Dir(path), cfg.OutputDir)
	}
	return cfg, nil
}

var knownKeys = map[string]struct{}{
	"font_path": {}, "font_size": {}, "output_width": {}, "output_height": {},
	"wrap_factor": {}, "output_json_file": {}, "output_dir": {}, "margin": {},
	"background": {}, "foreground": {}, "markdown": {}, "break_long_words": {},
	"continue_on_error": {}, "job_timeout": {},
}

// Parse decodes and validates a configuration document. Keys it does not
// know are collected in UnknownKeys rather than rejected.
func Parse(b []byte) (*Config, error) {
	doc := &document{}
	if err := yaml.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", quesimg.ErrConfig, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", quesimg.ErrConfig, err)
	}
	cfg, err := doc.validate()
	if err != nil {
		return nil, err
	}
	for k := range raw {
		if _, ok := knownKeys[k]; !ok {
			cfg.UnknownKeys = append(cfg.UnknownKeys, k)
		}
	}
	slices.Sort(cfg.UnknownKeys)
	return cfg, nil
}

func (d *document) validate() (*Config, error) {
	var missing []string
	required := func(name string, set bool) {
		if !set {
			missing = append(missing, name)
		}
	}
	required("font_path", d.FontPath != nil)
	required("font_size", d.FontSize != nil)
	required("output_width", d.OutputWidth != nil)
	required("output_height", d.OutputHeight != nil)
	required("wrap_factor", d.WrapFactor != nil)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required keys: %s", quesimg.ErrConfig, strings.Join(missing, ", "))
	}

	positive := map[string]int{
		"font_size":     *d.FontSize,
		"output_width":  *d.OutputWidth,
		"output_height": *d.OutputHeight,
		"wrap_factor":   *d.WrapFactor,
	}
	for _, name := range []string{"font_size", "output_width", "output_height", "wrap_factor"} {
		if positive[name] <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive integer, got %d", quesimg.ErrConfig, name, positive[name])
		}
	}

	if *d.OutputWidth / *d.WrapFactor == 0 {
		return nil, fmt.Errorf("%w: wrap_factor %d leaves no characters per line at output_width %d", quesimg.ErrConfig, *d.WrapFactor, *d.OutputWidth)
	}

	cfg := &Config{
		FontPath:        *d.FontPath,
		FontSize:        *d.FontSize,
		OutputWidth:     *d.OutputWidth,
		OutputHeight:    *d.OutputHeight,
		WrapFactor:      *d.WrapFactor,
		OutputJSONFile:  DefaultOutputJSONFile,
		Margin:          quesimg.DefaultMargin,
		Markdown:        d.Markdown,
		BreakLongWords:  d.BreakLongWords,
		ContinueOnError: d.ContinueOnError,
	}
	if d.OutputJSONFile != nil {
		if *d.OutputJSONFile == "" {
			return nil, fmt.Errorf("%w: output_json_file must not be empty", quesimg.ErrConfig)
		}
		cfg.OutputJSONFile = *d.OutputJSONFile
	}
	if d.OutputDir != nil {
		cfg.OutputDir = *d.OutputDir
	}
	if d.Margin != nil {
		if *d.Margin < 0 {
			return nil, fmt.Errorf("%w: margin must not be negative, got %d", quesimg.ErrConfig, *d.Margin)
		}
		cfg.Margin = *d.Margin
	}

	bg, fg := DefaultBackground, DefaultForeground
	if d.Background != nil {
		bg = *d.Background
	}
	if d.Foreground != nil {
		fg = *d.Foreground
	}
	var err error
	if cfg.Background, err = quesimg.ParseColor(bg); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if cfg.Foreground, err = quesimg.ParseColor(fg); err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}

	if d.JobTimeout != "" {
		cfg.JobTimeout, err = time.ParseDuration(d.JobTimeout)
		if err != nil || cfg.JobTimeout < 0 {
			return nil, fmt.Errorf("%w: invalid job_timeout %q", quesimg.ErrConfig, d.JobTimeout)
		}
	}
	return cfg, nil
}

// WrapWidth is the number of characters per line: width / wrap factor.
func (c *Config) WrapWidth() int {
	return c.OutputWidth / c.WrapFactor
}

// Palette returns the configured colours.
func (c *Config) Palette() quesimg.Palette {
	return quesimg.Palette{BG: c.Background, FG: c.Foreground}
}
