package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var resultSchema []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(resultSchema)); err != nil {
		return nil, fmt.Errorf("load result schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile result schema: %w", err)
	}
	return schema, nil
})

// Validate checks that data is a JSON outline result.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validate result: %w", err)
	}
	return nil
}
