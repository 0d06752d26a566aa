// Package codec embeds a composition's full state in its rendered SVG and
// recovers it again.
//
// The payload is the composition's JSON wire form ([Document]), URL-encoded
// and then base64-encoded so it is safe as XML text. It lives in a
// <metadata> element whose id is [MetadataID]:
//
//	<metadata id="scatter-state">JTdCJTIybWV0YSUyMi...</metadata>
//
// [Decode] is the lenient entry point used by editors: any failure yields
// nil, meaning "no recoverable state". [Parse] returns the reason instead.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/errors"
)

// MetadataID is the id of the element that carries the payload.
const MetadataID = "scatter-state"

// Encode returns the embeddable payload for c.
func Encode(c art.Composition) (string, error) {
	data, err := MarshalJSON(c)
	if err != nil {
		return "", err
	}
	return EncodePayload(data), nil
}

// EncodePayload applies the text transform to raw JSON.
func EncodePayload(data []byte) string {
	return base64.StdEncoding.EncodeToString([]byte(url.QueryEscape(string(data))))
}

// DecodePayload reverses [EncodePayload]. Raw JSON payloads from older
// documents are returned unchanged.
func DecodePayload(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New(errors.ErrCodeInvalidMetadata, "empty payload")
	}
	if text[0] == '{' {
		return []byte(text), nil
	}

	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "payload is not base64")
	}
	s, err := url.QueryUnescape(string(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "payload is not url-encoded")
	}
	return []byte(s), nil
}

// Decode extracts the composition embedded in svg. It returns nil when the
// metadata element is missing or empty, or its payload does not parse.
func Decode(svg []byte) *art.Composition {
	c, err := Parse(svg)
	if err != nil {
		return nil
	}
	return c
}

// Parse is like [Decode] but reports why no state could be recovered:
// ErrCodeNoMetadata when the element is absent or empty, and
// ErrCodeInvalidMetadata when its payload is malformed.
//
// Canvas dimensions missing from the payload are taken from the root
// element's width and height attributes, or its viewBox.
func Parse(svg []byte) (*art.Composition, error) {
	doc, err := scan(svg)
	if err != nil {
		return nil, err
	}
	if !doc.found || strings.TrimSpace(doc.payload) == "" {
		return nil, errors.New(errors.ErrCodeNoMetadata, "document has no %s metadata", MetadataID)
	}

	data, err := DecodePayload(doc.payload)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalJSON(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "payload is not valid JSON")
	}

	if c.Meta.Width <= 0 {
		c.Meta.Width = doc.width
	}
	if c.Meta.Height <= 0 {
		c.Meta.Height = doc.height
	}
	return &c, nil
}

// HasMetadata reports whether svg carries a non-empty state element.
func HasMetadata(svg []byte) bool {
	doc, err := scan(svg)
	return err == nil && doc.found && strings.TrimSpace(doc.payload) != ""
}

type scanned struct {
	width, height int
	found         bool
	payload       string
}

// scan walks the token stream up to the end of the metadata element.
func scan(svg []byte) (scanned, error) {
	var out scanned

	d := xml.NewDecoder(bytes.NewReader(svg))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity

	var (
		sawRoot bool
		inMeta  bool
		text    strings.Builder
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if out.found {
				break
			}
			return out, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "document is not well-formed")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !sawRoot && t.Name.Local == "svg" {
				sawRoot = true
				out.width, out.height = rootSize(t.Attr)
			}
			if t.Name.Local == "metadata" && attr(t.Attr, "id") == MetadataID {
				inMeta = true
				out.found = true
			}
		case xml.CharData:
			if inMeta {
				text.Write(t)
			}
		case xml.EndElement:
			if inMeta && t.Name.Local == "metadata" {
				out.payload = text.String()
				return out, nil
			}
		}
	}
	if inMeta {
		out.payload = text.String()
	}
	return out, nil
}

func attr(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func rootSize(attrs []xml.Attr) (w, h int) {
	w, h = parseDim(attr(attrs, "width")), parseDim(attr(attrs, "height"))
	if w > 0 && h > 0 {
		return w, h
	}
	fields := strings.Fields(strings.ReplaceAll(attr(attrs, "viewBox"), ",", " "))
	if len(fields) == 4 {
		if w <= 0 {
			w = parseDim(fields[2])
		}
		if h <= 0 {
			h = parseDim(fields[3])
		}
	}
	return w, h
}

func parseDim(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return int(v)
}
