package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/scatter/pkg/cache"
	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/edit"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/core/render/sink"
	"github.com/matzehuels/scatter/pkg/errors"
	"github.com/matzehuels/scatter/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"png", false},
		{"pdf", false},
		{"preview", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Seed == nil {
		t.Fatal("seed not resolved")
	}
	if opts.Width != generate.DefaultWidth || opts.ShapeCount != generate.DefaultShapeCount {
		t.Errorf("generator defaults not applied: %+v", opts.Config)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	seed := *opts.Seed
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if *opts.Seed != seed {
		t.Error("second call changed the seed")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"pattern", Options{Config: generate.Config{Patterns: []string{"zigzag"}}}, errors.ErrCodeInvalidPattern},
		{"color", Options{Config: generate.Config{Colors: []string{"not a color"}}}, errors.ErrCodeInvalidColor},
		{"placement", Options{Config: generate.Config{Placement: "grid"}}, errors.ErrCodeInvalidInput},
		{"scale", Options{Scale: -1}, errors.ErrCodeInvalidInput},
		{"background texture", Options{Background: &codec.BackgroundJSON{Texture: "marble"}}, errors.ErrCodeInvalidInput},
		{"background pattern", Options{Background: &codec.BackgroundJSON{Texture: art.TexturePattern, Pattern: "zigzag"}}, errors.ErrCodeInvalidPattern},
		{"background stamp", Options{Background: &codec.BackgroundJSON{Texture: art.TextureStamp}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3, Native: true}
	if got := opts.ArtifactKeyOpts(FormatSVG); got.Scale != 0 || got.Native {
		t.Errorf("svg key opts = %+v, want scale and native ignored", got)
	}
	if got := opts.ArtifactKeyOpts(FormatPNG); got.Scale != 3 || !got.Native {
		t.Errorf("png key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatPreview); got.Scale != 3 || got.Native {
		t.Errorf("preview key opts = %+v", got)
	}
}

func TestExtension(t *testing.T) {
	for format, want := range map[string]string{"svg": ".svg", "json": ".json", "png": ".png", "pdf": ".pdf", "preview": ".png"} {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(fc, nil, nil)
}

func TestExecuteSeed42(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Config: generate.Config{Seed: generate.Seed(42)}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.ShapeCount != 104 || len(res.Composition.Shapes) != 104 {
		t.Errorf("shape count = %d, want 104", res.Stats.ShapeCount)
	}
	if res.Composition.Meta.Seed != 42 {
		t.Errorf("seed = %d", res.Composition.Meta.Seed)
	}
	svg := res.Artifacts[FormatSVG]
	if svg == nil {
		t.Fatal("no svg artifact")
	}
	if !bytes.Equal(svg, sink.RenderSVG(generate.Generate(generate.Config{Seed: generate.Seed(42)}))) {
		t.Error("pipeline svg differs from a direct render")
	}
	if res.Hash == "" || res.Hash != Hash(res.Composition) {
		t.Errorf("Hash = %q", res.Hash)
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	opts := Options{
		Config:  generate.Config{Seed: generate.Seed(7), Width: 120, Height: 80, ShapeCount: 10},
		Formats: []string{FormatSVG, FormatJSON, FormatPreview},
		Scale:   1,
	}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.GenerateHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want all misses", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.GenerateHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want all hits", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Composition, second.Composition); diff != "" {
		t.Errorf("cached composition differs (-first +second):\n%s", diff)
	}
	for _, f := range opts.Formats {
		if !bytes.Equal(first.Artifacts[f], second.Artifacts[f]) {
			t.Errorf("%s artifact differs between runs", f)
		}
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.GenerateHit {
		t.Error("Refresh still hit the composition cache")
	}
}

func TestExecuteBackground(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	scale := 2.0
	res, err := r.Execute(context.Background(), Options{
		Config: generate.Config{Seed: generate.Seed(1), Width: 100, Height: 100, ShapeCount: 3},
		Background: &codec.BackgroundJSON{
			Color:        "#000000",
			Texture:      art.TexturePattern,
			Pattern:      art.PatternDots,
			TextureScale: &scale,
			Ink:          "#ffffff",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	bg := res.Composition.Background
	if bg == nil || bg.Color != "#000000" || bg.Pattern != art.PatternDots || bg.TextureScale != 2 {
		t.Fatalf("Background = %+v", bg)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), sink.BackgroundPatternID) {
		t.Error("svg has no background tile")
	}
}

func TestExecuteBackgroundDefaultColor(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Config:     generate.Config{Seed: generate.Seed(1), ShapeCount: 1},
		Background: &codec.BackgroundJSON{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if bg := res.Composition.Background; bg == nil || bg.Color != sink.DefaultBackground || bg.Texture != art.TextureSolid {
		t.Errorf("Background = %+v", bg)
	}
}

func TestExecuteInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Formats: []string{"bmp"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v", err)
	}
}

func TestRenderFormats(t *testing.T) {
	c := generate.Generate(generate.Config{Seed: generate.Seed(3), Width: 40, Height: 20, ShapeCount: 4})
	out, err := Render(context.Background(), c, Options{Formats: []string{FormatSVG, FormatJSON, FormatPNG, FormatPreview}, Scale: 1, Native: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out[FormatSVG], []byte("<svg")) {
		t.Errorf("svg = %.40q", out[FormatSVG])
	}
	back, err := codec.UnmarshalJSON(out[FormatJSON])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c, back); diff != "" {
		t.Errorf("json artifact does not round-trip:\n%s", diff)
	}
	png := []byte("\x89PNG")
	for _, f := range []string{FormatPNG, FormatPreview} {
		if !bytes.HasPrefix(out[f], png) {
			t.Errorf("%s artifact is not a PNG", f)
		}
	}
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	res, err := r.Execute(ctx, Options{Config: generate.Config{Seed: generate.Seed(42), ShapeCount: 5}})
	if err != nil {
		t.Fatal(err)
	}
	id := res.Composition.Shapes[0].ID

	edited, err := r.Edit(ctx, res.Artifacts[FormatSVG],
		edit.Op{Op: edit.OpMove, Shape: id, X: 10, Y: 20},
		edit.Op{Op: edit.OpFront, Shape: id},
	)
	if err != nil {
		t.Fatal(err)
	}
	shapes := edited.Composition.Shapes
	last := shapes[len(shapes)-1]
	if last.ID != id || last.X != 10 || last.Y != 20 {
		t.Errorf("edited shape = %+v", last)
	}
	if edited.Composition.Meta != res.Composition.Meta {
		t.Errorf("Meta changed: %+v", edited.Composition.Meta)
	}

	decoded, err := r.Decode(edited.Artifacts[FormatSVG])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(edited.Composition, decoded); diff != "" {
		t.Errorf("edited svg does not decode to the edited composition:\n%s", diff)
	}
}

func TestEditErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	if _, err := r.Edit(ctx, []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)); !errors.Is(err, errors.ErrCodeNoMetadata) {
		t.Errorf("no metadata: %v", err)
	}

	svg := sink.RenderSVG(generate.Generate(generate.Config{Seed: generate.Seed(1), ShapeCount: 2}))
	_, err := r.Edit(ctx, svg, edit.Op{Op: edit.OpDelete, Shape: "missing"})
	if !errors.Is(err, errors.ErrCodeShapeNotFound) {
		t.Errorf("missing shape: %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnGenerateStart(context.Context, uint32, int) { h.record("generate-start") }
func (h *recordingHooks) OnGenerateComplete(context.Context, uint32, int, time.Duration) {
	h.record("generate-complete")
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.record("render-start") }
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render-complete")
}
func (h *recordingHooks) OnEditComplete(context.Context, int, time.Duration, error) {
	h.record("edit-complete")
}

func TestPipelineHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(ctx, Options{Config: generate.Config{Seed: generate.Seed(5), ShapeCount: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Edit(ctx, res.Artifacts[FormatSVG]); err != nil {
		t.Fatal(err)
	}

	want := []string{"generate-start", "generate-complete", "render-start", "render-complete", "edit-complete", "render-start", "render-complete"}
	if diff := cmp.Diff(want, hooks.events); diff != "" {
		t.Errorf("hook events (-want +got):\n%s", diff)
	}
}
