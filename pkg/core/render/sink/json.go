package sink

import (
	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
)

// RenderJSON exports the composition in the same wire form that is embedded
// in SVG metadata, indented for reading.
func RenderJSON(c art.Composition) ([]byte, error) {
	data, err := codec.MarshalIndent(c)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
