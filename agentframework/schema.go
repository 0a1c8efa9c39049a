// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

// GenerateSchema builds a JSON Schema from a Go struct type using reflection.
//
// Field names come from the json tag. The jsonschema tag adds metadata as a
// comma-separated list of keys:
//
//	description=<text>   property description
//	required             property must be present
//	enum=a|b|c           allowed string values
//	minimum=<n>          numeric lower bound
//	maximum=<n>          numeric upper bound
//	minItems=<n>         array length lower bound
//	maxItems=<n>         array length upper bound
//
// Descriptions therefore cannot contain commas.
func GenerateSchema[T any]() json.RawMessage {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return json.RawMessage(`{}`)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	b, _ := json.Marshal(schemaForType(t))
	return b
}

func schemaForType(t reflect.Type) map[string]any {
	if t == rawMessageType {
		return map[string]any{}
	}
	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": schemaForType(t.Elem()),
		}
	case reflect.Ptr:
		return schemaForType(t.Elem())
	case reflect.Struct:
		return schemaForStruct(t)
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return map[string]any{
				"type":                 "object",
				"additionalProperties": schemaForType(t.Elem()),
			}
		}
		return map[string]any{"type": "object"}
	case reflect.Interface:
		return map[string]any{}
	default:
		return map[string]any{"type": "string"}
	}
}

func schemaForStruct(t reflect.Type) map[string]any {
	properties := make(map[string]any)
	required := []string{}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := field.Name
		if jsonTag != "" {
			if n, _, _ := strings.Cut(jsonTag, ","); n != "" {
				name = n
			}
		}

		prop := schemaForType(field.Type)
		for _, part := range strings.Split(field.Tag.Get("jsonschema"), ",") {
			key, val, _ := strings.Cut(part, "=")
			key = strings.TrimSpace(key)
			val = strings.TrimSpace(val)
			switch key {
			case "description":
				prop["description"] = val
			case "required":
				required = append(required, name)
			case "enum":
				var vals []any
				for _, ev := range strings.Split(val, "|") {
					vals = append(vals, strings.TrimSpace(ev))
				}
				prop["enum"] = vals
			case "minimum", "maximum":
				if f, err := strconv.ParseFloat(val, 64); err == nil {
					prop[key] = f
				}
			case "minItems", "maxItems":
				if n, err := strconv.Atoi(val); err == nil {
					prop[key] = n
				}
			}
		}

		properties[name] = prop
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
