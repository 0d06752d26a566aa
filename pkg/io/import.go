package io

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/errors"
)

// MaxFileSize bounds how much ReadComposition and ReadStamps will read.
const MaxFileSize = 64 << 20

// ReadStamps decodes a stamp pool from r.
//
// The input is either {"stamps": [...]} or a bare array. A stamp without a
// path or with non-positive dimensions is an INVALID_INPUT error naming its
// index. ReadStamps does not close r.
func ReadStamps(r io.Reader) ([]art.Stamp, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var stamps []art.Stamp
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &stamps)
	} else {
		var p pool
		err = json.Unmarshal(data, &p)
		stamps = p.Stamps
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode stamp pool")
	}

	for i, st := range stamps {
		if !st.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "stamp %d: needs a path and positive width and height", i)
		}
	}
	return stamps, nil
}

// ImportStamps reads the stamp pool at path. A missing file is a
// FILE_NOT_FOUND error.
func ImportStamps(path string) ([]art.Stamp, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stamps, err := ReadStamps(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stamps, nil
}

// ReadComposition decodes a composition from r, which holds either a
// rendered SVG or the JSON document form. An SVG without recoverable state
// is a NO_METADATA or INVALID_METADATA error. ReadComposition does not
// close r.
func ReadComposition(r io.Reader) (art.Composition, error) {
	data, err := readAll(r)
	if err != nil {
		return art.Composition{}, err
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		c, err := codec.UnmarshalJSON(trimmed)
		if err != nil {
			return art.Composition{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode composition json")
		}
		return c, nil
	}

	c, err := codec.Parse(data)
	if err != nil {
		return art.Composition{}, err
	}
	return *c, nil
}

// ImportComposition reads the composition stored at path.
func ImportComposition(path string) (art.Composition, error) {
	f, err := open(path)
	if err != nil {
		return art.Composition{}, err
	}
	defer f.Close()

	c, err := ReadComposition(f)
	if err != nil {
		return art.Composition{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no such file: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input larger than %d bytes", MaxFileSize)
	}
	return data, nil
}
