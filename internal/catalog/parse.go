package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var schemaJSON []byte

//go:embed default.yaml
var defaultYAML []byte

const schemaURL = "schema://autismart/catalog.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error

	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the built-in 50-question catalog.
// It panics if the embedded data is invalid, which tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", defaultErr))
	}
	return defaultCat
}

// Parse decodes a YAML catalog, checks it against the catalog JSON schema
// and then validates its structure.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

// validateSchema runs the decoded YAML document through the JSON schema.
// The document is round-tripped through JSON so numbers arrive in the
// representation the validator expects.
func validateSchema(doc any) error {
	compileOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	if compileErr != nil {
		return compileErr
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog is not representable as JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("catalog is not representable as JSON: %w", err)
	}
	if err := compiled.Validate(inst); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}
