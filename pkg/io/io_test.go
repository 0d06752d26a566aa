package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/core/render/sink"
	"github.com/matzehuels/scatter/pkg/errors"
)

var testStamps = []art.Stamp{
	{Path: "M0 0h4v2h-4Z", Width: 4, Height: 2, Resolution: 4},
	{Path: "M1 0h1v3h-1Z", Width: 3, Height: 3},
}

func TestStampsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStamps(testStamps, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "{\n  \"stamps\": [") {
		t.Errorf("unexpected pool layout:\n%s", buf.String())
	}
	got, err := ReadStamps(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testStamps, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestReadStamps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		code  errors.Code
	}{
		{"object", `{"stamps":[{"path":"M0 0h1v1h-1Z","width":1,"height":1}]}`, 1, ""},
		{"bare array", ` [{"path":"M0 0h1v1h-1Z","width":1,"height":1}]`, 1, ""},
		{"empty", `{"stamps":[]}`, 0, ""},
		{"no path", `{"stamps":[{"width":1,"height":1}]}`, 0, errors.ErrCodeInvalidInput},
		{"zero size", `[{"path":"M0 0Z","width":0,"height":1}]`, 0, errors.ErrCodeInvalidInput},
		{"malformed", `{"stamps":`, 0, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadStamps(strings.NewReader(tt.input))
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d stamps, want %d", len(got), tt.want)
			}
		})
	}
}

func TestImportExportStamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools", "leaves.json")
	if err := ExportStamps(testStamps, path); err != nil {
		t.Fatal(err)
	}
	got, err := ImportStamps(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(testStamps) {
		t.Errorf("imported %d stamps", len(got))
	}

	_, err = ImportStamps(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestReadComposition(t *testing.T) {
	c := generate.Generate(generate.Config{Seed: generate.Seed(9), ShapeCount: 6})
	jsonDoc, err := sink.RenderJSON(c)
	if err != nil {
		t.Fatal(err)
	}

	for name, data := range map[string][]byte{
		"svg":  sink.RenderSVG(c),
		"json": jsonDoc,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ReadComposition(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c, got); diff != "" {
				t.Errorf("ReadComposition (-want +got):\n%s", diff)
			}
		})
	}

	_, err = ReadComposition(bytes.NewReader(sink.RenderSVG(c, sink.WithoutMetadata())))
	if !errors.Is(err, errors.ErrCodeNoMetadata) {
		t.Errorf("svg without state: %v", err)
	}
	_, err = ReadComposition(strings.NewReader(`{"meta":`))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("broken json: %v", err)
	}
}

func TestExportComposition(t *testing.T) {
	dir := t.TempDir()
	c := generate.Generate(generate.Config{Seed: generate.Seed(2), ShapeCount: 3})

	for _, name := range []string{"art.svg", "art.json"} {
		path := filepath.Join(dir, name)
		if err := ExportComposition(c, path); err != nil {
			t.Fatal(err)
		}
		got, err := ImportComposition(path)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(c, got); diff != "" {
			t.Errorf("%s round trip (-want +got):\n%s", name, diff)
		}
	}

	data, _ := os.ReadFile(filepath.Join(dir, "art.svg"))
	if !bytes.HasPrefix(data, []byte("<svg")) {
		t.Errorf("art.svg = %.20q", data)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b.txt")
	if err := WriteFile(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, []byte("two")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Errorf("content = %q", data)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "a"))
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %v", entries)
	}

	if err := WriteFile("../escape.txt", nil); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("traversal error = %v", err)
	}
}
