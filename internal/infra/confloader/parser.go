package confloader

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// JSONC parses JSON extended with // line comments, /* block comments */
// and trailing commas. It implements koanf.Parser.
type JSONC struct{}

// JSONCParser returns a JSONC parser.
func JSONCParser() *JSONC {
	return &JSONC{}
}

// Unmarshal strips comments and decodes the document into a map.
func (p *JSONC) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(b), &out); err != nil {
		return nil, fmt.Errorf("parsing jsonc: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Marshal encodes a map as indented JSON.
func (p *JSONC) Marshal(o map[string]any) ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}
