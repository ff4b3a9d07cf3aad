package calibration

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaDoc constrains JSON override documents: known top-level blocks only,
// numeric leaves. Unknown keys inside a block are ignored by the decoder, so
// the schema concentrates on shape rather than exhaustive field lists.
const schemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "channel_weights": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0}
    },
    "min_samples": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 1}
    },
    "mouse":      {"$ref": "#/$defs/ruleBlock"},
    "keyboard":   {"$ref": "#/$defs/ruleBlock"},
    "scroll":     {"$ref": "#/$defs/ruleBlock"},
    "touch":      {"$ref": "#/$defs/ruleBlock"},
    "sensors":    {"$ref": "#/$defs/ruleBlock"},
    "rendering":  {"$ref": "#/$defs/ruleBlock"},
    "safeguards": {"$ref": "#/$defs/ruleBlock"}
  },
  "$defs": {
    "ruleBlock": {
      "type": "object",
      "additionalProperties": {"type": "number"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("calibration.schema.json", strings.NewReader(schemaDoc)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("calibration.schema.json")
	})
	return schema, schemaErr
}

// validateSchema checks a JSON override document against the calibration
// schema.
func validateSchema(doc []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return err
	}
	return sch.Validate(v)
}
