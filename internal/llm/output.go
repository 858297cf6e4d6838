package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// compileSchema compiles s once per name.
func compileSchema(s *Schema) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if c, ok := compiled[s.Name]; ok {
		return c, nil
	}

	// The compiler wants decoded JSON values, not Go maps of arbitrary types.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", s.Name, err)
	}

	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", s.Name, err)
	}
	compiled[s.Name] = sch
	return sch, nil
}

// checkOutput trims code fences some models wrap around JSON and validates
// the result against s. A nil s returns text unchanged.
func checkOutput(provider string, s *Schema, text string) (json.RawMessage, error) {
	if s == nil {
		return json.RawMessage(text), nil
	}
	body := stripFences(text)
	invalid := func(err error) error {
		return &Error{Kind: KindInvalidOutput, Provider: provider, Content: json.RawMessage(text), Err: err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, invalid(fmt.Errorf("not JSON: %w", err))
	}
	sch, err := compileSchema(s)
	if err != nil {
		return nil, invalid(err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, invalid(err)
	}
	return json.RawMessage(body), nil
}

func stripFences(text string) []byte {
	b := bytes.TrimSpace([]byte(text))
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}
