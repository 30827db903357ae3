package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// schemas holds one compiled envelope schema per kind. An envelope matches
// a payload object with exactly one key, the kind's tag, whose value is an
// object or null. Member types are not checked here: Normalize drops
// members that are null or of the wrong type so one bad field never costs
// the whole comment.
var schemas = mustCompileSchemas()

func mustCompileSchemas() map[Kind]*jsonschema.Schema {
	out := make(map[Kind]*jsonschema.Schema, len(kinds))
	for _, k := range kinds {
		s, err := compileSchema(k, envelopeSchema(k))
		if err != nil {
			panic(fmt.Sprintf("metadata: compile %s schema: %v", k, err))
		}
		out[k] = s
	}
	return out
}

func compileSchema(kind Kind, schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	url := "folio-" + string(kind) + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

func envelopeSchema(kind Kind) map[string]any {
	return map[string]any{
		"type":          "object",
		"required":      []string{kind.Tag()},
		"minProperties": 1,
		"maxProperties": 1,
		"properties": map[string]any{
			kind.Tag(): map[string]any{"type": []string{"object", "null"}},
		},
	}
}
