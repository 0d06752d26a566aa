package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/render/sink"
	"github.com/matzehuels/scatter/pkg/errors"
)

type pool struct {
	Stamps []art.Stamp `json:"stamps"`
}

// WriteStamps encodes stamps as an indented stamp pool and writes it to w.
// The output can be re-read with [ReadStamps].
func WriteStamps(stamps []art.Stamp, w io.Writer) error {
	if stamps == nil {
		stamps = []art.Stamp{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pool{Stamps: stamps}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportStamps writes a stamp pool file at path.
func ExportStamps(stamps []art.Stamp, path string) error {
	var b bytes.Buffer
	if err := WriteStamps(stamps, &b); err != nil {
		return err
	}
	return WriteFile(path, b.Bytes())
}

// ExportComposition writes c to path. A ".json" extension selects the JSON
// document form; anything else gets a rendered SVG with embedded state.
func ExportComposition(c art.Composition, path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var err error
		if data, err = sink.RenderJSON(c); err != nil {
			return fmt.Errorf("encode composition: %w", err)
		}
	default:
		data = sink.RenderSVG(c)
	}
	return WriteFile(path, data)
}

// WriteFile writes data to path atomically, creating parent directories as
// needed.
func WriteFile(path string, data []byte) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
