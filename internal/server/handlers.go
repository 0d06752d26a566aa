package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/scatter/pkg/buildinfo"
	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/edit"
	"github.com/matzehuels/scatter/pkg/core/stamp"
	"github.com/matzehuels/scatter/pkg/errors"
	pkgio "github.com/matzehuels/scatter/pkg/io"
	"github.com/matzehuels/scatter/pkg/pipeline"
	"github.com/matzehuels/scatter/pkg/store"
)

// documentResponse describes a stored document without its SVG body.
type documentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Seed       uint32 `json:"seed"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ShapeCount int    `json:"shapeCount"`
}

func newDocumentResponse(d *store.Document) documentResponse {
	return documentResponse{
		ID:         d.ID,
		Name:       d.Name,
		Seed:       d.Seed,
		Width:      d.Width,
		Height:     d.Height,
		ShapeCount: d.ShapeCount,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body larger than %d bytes", s.maxBody)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// decodeJSON decodes the request body into v. An empty body leaves v as is.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := s.readBody(w, r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body: %v", err)
	}
	return nil
}

// wantsSVG reports whether the client asked for the SVG itself rather than
// a JSON summary.
func wantsSVG(r *http.Request) bool {
	return r.URL.Query().Get("format") == pipeline.FormatSVG
}

func writeSVG(w http.ResponseWriter, status int, d *store.Document) {
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatSVG])
	w.Header().Set("X-Document-Id", d.ID)
	w.WriteHeader(status)
	_, _ = w.Write(d.SVG)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := s.decodeJSON(w, r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	name := r.URL.Query().Get("name")
	if err := errors.ValidateDocumentName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{pipeline.FormatSVG}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	meta := res.Composition.Meta
	doc := &store.Document{
		Name:       name,
		SVG:        res.Artifacts[pipeline.FormatSVG],
		Seed:       meta.Seed,
		Width:      meta.Width,
		Height:     meta.Height,
		ShapeCount: len(res.Composition.Shapes),
	}
	if err := s.store.Put(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/compositions/"+doc.ID)
	if wantsSVG(r) {
		writeSVG(w, http.StatusCreated, doc)
		return
	}
	writeJSON(w, http.StatusCreated, newDocumentResponse(doc))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	docs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]documentResponse, len(docs))
	for i := range docs {
		out[i] = newDocumentResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSVG(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.runner.Decode(doc.SVG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codec.FromComposition(c))
}

func (s *Server) handleEdits(w http.ResponseWriter, r *http.Request) {
	var ops []edit.Op
	if err := s.decodeJSON(w, r, &ops); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Edit(r.Context(), doc.SVG, ops...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc.SVG = res.Artifacts[pipeline.FormatSVG]
	doc.ShapeCount = len(res.Composition.Shapes)
	if err := s.store.Put(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsSVG(r) {
		writeSVG(w, http.StatusOK, doc)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentResponse(doc))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts := pipeline.Options{Formats: []string{format}}
	q := r.URL.Query()
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid scale: %q", v))
			return
		}
		opts.Scale = scale
	}
	opts.Native = q.Get("native") == "true"
	opts.SetRenderDefaults()
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.runner.Decode(doc.SVG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), c, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "scatter-"+doc.ID+pipeline.Extension(format)))
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var doc *codec.Document
	if c := codec.Decode(data); c != nil {
		d := codec.FromComposition(*c)
		doc = &d
	}
	writeJSON(w, http.StatusOK, map[string]any{"composition": doc})
}

func (s *Server) handleStamps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := stamp.Options{
		Invert: q.Get("invert") == "true",
		Alpha:  q.Get("alpha") == "true",
	}
	var cols, rows int
	for name, dst := range map[string]*int{"resolution": &opts.Resolution, "cols": &cols, "rows": &rows} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v))
				return
			}
			*dst = n
		}
	}
	if v := q.Get("threshold"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid threshold: %q", v))
			return
		}
		opts.Threshold = uint8(n)
	}

	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	img, _, err := stamp.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if cols > 1 || rows > 1 {
		sheet, err := stamp.FromSheet(img, max(cols, 1), max(rows, 1), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeStamps(w, sheet)
		return
	}
	st, err := stamp.FromImage(img, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeStamps(w, []art.Stamp{st})
}

func (s *Server) writeStamps(w http.ResponseWriter, stamps []art.Stamp) {
	var buf bytes.Buffer
	if err := pkgio.WriteStamps(stamps, &buf); err != nil {
		s.logger.Error("encode stamps", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}
