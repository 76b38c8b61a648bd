package output

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/inodb/genome-track/internal/glyph"
)

// WritePatchesJSON encodes a patch dictionary as a single JSON object.
// Nil arrays are written as [] so consumers can index every key.
func WritePatchesJSON(w io.Writer, p glyph.Patches) error {
	if err := p.Validate(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(nonNil(p)); err != nil {
		return fmt.Errorf("encode patches: %w", err)
	}
	return nil
}

func nonNil(p glyph.Patches) glyph.Patches {
	if p.Len() > 0 {
		return p
	}
	return glyph.NewPatches(0)
}
