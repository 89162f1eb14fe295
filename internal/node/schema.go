package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jmylchreest/palettenode/internal/errdefs"
)

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		loader := gojsonschema.NewGoLoader(parameterSchema())
		compiledSchema, compileErr = gojsonschema.NewSchema(loader)
	})
	return compiledSchema, compileErr
}

// ParameterSchema returns the JSON Schema that parameter maps are checked
// against. It is derived from the node's properties.
func ParameterSchema() ([]byte, error) {
	return json.MarshalIndent(parameterSchema(), "", "  ")
}

func parameterSchema() map[string]any {
	props := make(map[string]any)
	for _, p := range NodeDescription().Properties {
		s := map[string]any{"description": p.Description}

		switch p.Type {
		case PropertyNumber:
			s["type"] = "integer"
			if p.TypeOptions != nil && p.TypeOptions.MinValue != nil {
				s["minimum"] = *p.TypeOptions.MinValue
			}
			if p.TypeOptions != nil && p.TypeOptions.MaxValue != nil {
				s["maximum"] = *p.TypeOptions.MaxValue
			}
		case PropertyOptions:
			s["type"] = "string"
			values := make([]any, 0, len(p.Options))
			for _, o := range p.Options {
				values = append(values, o.Value)
			}
			s["enum"] = values
		case PropertyBoolean:
			s["type"] = "boolean"
		default:
			s["type"] = "string"
		}

		props[p.Name] = s
	}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                NodeDescription().DisplayName + " parameters",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// validateParameters checks p against the parameter schema. Every violation
// becomes an InvalidParameterError.
func validateParameters(p Parameters) error {
	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("compiling parameter schema: %w", err)
	}

	if p == nil {
		p = Parameters{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(map[string]any(p)))
	if err != nil {
		return errdefs.InvalidParameter("parameters", "%v", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, &errdefs.InvalidParameterError{
			Param:  violationField(e),
			Reason: e.Description(),
		})
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// violationField names the parameter behind a schema violation. Root-level
// violations such as unknown properties carry the name in their details.
func violationField(e gojsonschema.ResultError) string {
	if field := e.Field(); field != "(root)" {
		return field
	}
	if name, ok := e.Details()["property"].(string); ok {
		return name
	}
	return "parameters"
}
