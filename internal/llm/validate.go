package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Stop reasons reported in Response.StopReason.
const (
	stopEnd       = "end"
	stopMaxTokens = "max_tokens"
)

// compiledSchemas holds one compiled validator per tutor schema. The tutor
// package declares its schemas as package variables, so pointer identity
// is stable for the life of the process.
var compiledSchemas = struct {
	sync.Mutex
	m map[*Schema]*jsonschema.Schema
}{m: make(map[*Schema]*jsonschema.Schema)}

// finish applies the checks every adapter runs on a completion before it
// is returned: truncation first, then the request schema.
func finish(req Request, content json.RawMessage, stop string) error {
	if req.Schema == nil {
		return nil
	}
	if stop == stopMaxTokens {
		return &ErrMaxTokensExceeded{Schema: req.Schema.Name, Content: content}
	}
	return validateResponse(req.Schema, content)
}

// validateResponse checks raw against schema. A nil schema accepts anything.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(err error) error {
		return &ErrInvalidResponse{Schema: schema.Name, Content: raw, Err: err}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return invalid(fmt.Errorf("invalid JSON: %w", err))
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return invalid(err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return invalid(fmt.Errorf("schema validation failed: %w", err))
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	compiledSchemas.Lock()
	defer compiledSchemas.Unlock()

	if c, ok := compiledSchemas.m[schema]; ok {
		return c, nil
	}

	// The compiler wants decoded JSON values, not the Go literals the tutor
	// schemas are written with.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", schema.Name, err)
	}

	url := "schema://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", schema.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	compiledSchemas.m[schema] = compiled
	return compiled, nil
}
