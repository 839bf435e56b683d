package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arran4/quesimg"
	"github.com/google/go-cmp/cmp"
)

const minimal = `font_path: fonts/DejaVuSans.ttf
font_size: 20
output_width: 400
output_height: 100
wrap_factor: 8
`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := &Config{
		FontPath:       "fonts/DejaVuSans.ttf",
		FontSize:       20,
		OutputWidth:    400,
		OutputHeight:   100,
		WrapFactor:     8,
		OutputJSONFile: "output_html_tags.json",
		Margin:         10,
		Background:     color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		Foreground:     color.RGBA{0, 0, 0, 0xFF},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.WrapWidth() != 50 {
		t.Fatalf("wrap width = %d, want 50", cfg.WrapWidth())
	}
}

func TestParseOptionalKeys(t *testing.T) {
	doc := minimal + `output_json_file: out.json
output_dir: images
margin: 4
background: "#000"
foreground: yellow
markdown: true
break_long_words: true
continue_on_error: true
job_timeout: 1500ms
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.OutputJSONFile != "out.json" || cfg.OutputDir != "images" || cfg.Margin != 4 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if !cfg.Markdown || !cfg.BreakLongWords || !cfg.ContinueOnError {
		t.Fatalf("flags not set: %+v", cfg)
	}
	if cfg.JobTimeout != 1500*time.Millisecond {
		t.Fatalf("job timeout = %v", cfg.JobTimeout)
	}
	p := cfg.Palette()
	if diff := cmp.Diff(color.RGBA{0, 0, 0, 0xFF}, color.RGBAModel.Convert(p.BG)); diff != "" {
		t.Fatalf("background mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(color.RGBA{0xFF, 0xFF, 0, 0xFF}, color.RGBAModel.Convert(p.FG)); diff != "" {
		t.Fatalf("foreground mismatch (-want +got):\n%s", diff)
	}
}

func TestParseToleratesUnknownKeys(t *testing.T) {
	cfg, err := Parse([]byte(minimal + "colour: red\nauthor: someone\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"author", "colour"}, cfg.UnknownKeys); diff != "" {
		t.Fatalf("unknown keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"font_path": "", "font_size": 12, "output_width": 300, "output_height": 50, "wrap_factor": 6}`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.WrapWidth() != 50 {
		t.Fatalf("wrap width = %d, want 50", cfg.WrapWidth())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{"missing keys", "font_path: x\nfont_size: 10\n", "output_width, output_height, wrap_factor"},
		{"zero wrap factor", strings.Replace(minimal, "wrap_factor: 8", "wrap_factor: 0", 1), "wrap_factor"},
		{"negative width", strings.Replace(minimal, "output_width: 400", "output_width: -4", 1), "output_width"},
		{"not a number", strings.Replace(minimal, "font_size: 20", "font_size: big", 1), "unmarshal"},
		{"wrap width zero", strings.Replace(minimal, "wrap_factor: 8", "wrap_factor: 401", 1), "no characters per line"},
		{"bad colour", minimal + "background: sky\n", "background"},
		{"bad timeout", minimal + "job_timeout: soon\n", "job_timeout"},
		{"empty json file", minimal + "output_json_file: \"\"\n", "output_json_file"},
		{"negative margin", minimal + "margin: -1\n", "margin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, quesimg.ErrConfig) {
				t.Fatalf("got %v, want ErrConfig", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(minimal+"output_dir: images\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(dir, "images"); cfg.OutputDir != want {
		t.Fatalf("output dir = %q, want %q", cfg.OutputDir, want)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, quesimg.ErrIO) {
		t.Fatalf("missing file: got %v, want ErrIO", err)
	}
}
