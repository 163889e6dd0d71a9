package mcp

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Object creates an object schema from its properties. Required names
// must appear in props.
func Object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// String creates a string property.
func String(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

// StringDefault creates a string property with a default value.
func StringDefault(description, def string) *jsonschema.Schema {
	s := String(description)
	s.Default = mustDefault(def)

	return s
}

// Integer creates an integer property with a default value.
func Integer(description string, def int) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: description,
		Default:     mustDefault(def),
	}
}

// Boolean creates a boolean property with a default value.
func Boolean(description string, def bool) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "boolean",
		Description: description,
		Default:     mustDefault(def),
	}
}

func mustDefault(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return data
}
