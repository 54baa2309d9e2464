package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// GenerateMessageSchema reflects MessageDoc into a JSON Schema document,
// the same way the teacher's schema/export.go reflects its runbook types.
func GenerateMessageSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(&MessageDoc{})
	s.Title = "taskolib.Message"
	return s
}

// GenerateStepSchema reflects StepDoc into a JSON Schema document.
func GenerateStepSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(&StepDoc{})
	s.Title = "taskolib.Step"
	return s
}

// ValidateAgainst compiles schema and validates doc (already JSON-encoded
// bytes) against it, mirroring the teacher's pkg/schema/validate.go
// compile-then-validate pattern.
func ValidateAgainst(schema *jsonschema.Schema, doc []byte) error {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return fmt.Errorf("decoding schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(doc, &instance); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return compiled.Validate(instance)
}
