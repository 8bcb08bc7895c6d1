package schema

import (
	"bytes"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	graphSchemaURL = "https://macrograph.dev/schemas/graph.json"
	macroSchemaURL = "https://macrograph.dev/schemas/macro.json"
)

// graphSchemaJSON is stricter than ParseGraph: every socket must carry exactly one binding.
const graphSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://macrograph.dev/schemas/graph.json",
  "type": "object",
  "required": ["inputs", "nodes"],
  "properties": {
    "inputs": {
      "type": "array",
      "items": { "$ref": "#/$defs/input" }
    },
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "valueType": {
      "type": "string",
      "enum": ["int", "float", "float3", "float4"]
    },
    "input": {
      "type": "object",
      "required": ["parameter", "parameterType"],
      "properties": {
        "parameter": { "type": "string", "minLength": 1 },
        "parameterType": { "$ref": "#/$defs/valueType" }
      },
      "additionalProperties": false
    },
    "node": {
      "type": "object",
      "required": ["type", "inputValues"],
      "properties": {
        "type": { "type": "string", "minLength": 1 },
        "inputValues": {
          "type": "array",
          "items": { "$ref": "#/$defs/socket" }
        },
        "outFlow": { "type": "integer", "minimum": 0 }
      },
      "additionalProperties": false
    },
    "socket": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": { "$ref": "#/$defs/valueType" },
        "value": { "type": ["string", "number"] },
        "inputIndex": { "type": "integer", "minimum": 0 },
        "referencedNodeId": { "type": "integer", "minimum": 0 },
        "referencedValueId": { "type": "string", "minLength": 1 }
      },
      "dependentRequired": {
        "referencedNodeId": ["referencedValueId"],
        "referencedValueId": ["referencedNodeId"]
      },
      "oneOf": [
        { "required": ["value"] },
        { "required": ["inputIndex"] },
        { "required": ["referencedNodeId"] }
      ],
      "additionalProperties": false
    }
  }
}`

const macroSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://macrograph.dev/schemas/macro.json",
  "type": "object",
  "required": ["name", "graph"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "activationPhrases": {
      "type": "array",
      "items": { "type": "string" }
    },
    "actions": {
      "type": "array",
      "items": { "type": "string" }
    },
    "createdAt": { "type": "string", "format": "date-time" },
    "graph": { "$ref": "graph.json" }
  }
}`

var printer = message.NewPrinter(language.English)

// Validator checks graph and macro documents against the embedded JSON Schemas.
// It is safe for concurrent use.
type Validator struct {
	graph *jsonschema.Schema
	macro *jsonschema.Schema
}

// NewValidator compiles the graph and macro schemas.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	for url, text := range map[string]string{graphSchemaURL: graphSchemaJSON, macroSchemaURL: macroSchemaJSON} {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", url, err)
		}
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", url, err)
		}
	}

	graph, err := c.Compile(graphSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile graph schema: %w", err)
	}
	macro, err := c.Compile(macroSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile macro schema: %w", err)
	}
	return &Validator{graph: graph, macro: macro}, nil
}

// ValidateGraph checks a graph document. Violations are returned as an *AggregateError.
func (v *Validator) ValidateGraph(data []byte) error {
	return validate(v.graph, data)
}

// ValidateMacro checks a macro document, including its embedded graph.
func (v *Validator) ValidateMacro(data []byte) error {
	return validate(v.macro, data)
}

func validate(s *jsonschema.Schema, data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		return &AggregateError{Errors: collectViolations(verr)}
	}
	return nil
}

// collectViolations walks a ValidationError tree and keeps its leaves.
func collectViolations(verr *jsonschema.ValidationError) []error {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []error{&ValidationError{Location: loc, Reason: verr.ErrorKind.LocalizedString(printer)}}
	}

	var out []error
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}
