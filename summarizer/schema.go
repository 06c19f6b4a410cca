package summarizer

import (
	"bytes"
	"encoding/json"

	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/utils"
)

const (
	ProsField = "pros"
	ConsField = "cons"
)

// OutputSchema describes a JSON object whose properties are all required
// arrays of strings. Providers translate it into their native schema types.
type OutputSchema struct {
	Name       string
	Properties []SchemaProperty
}

type SchemaProperty struct {
	Name        string
	Description string
}

// ResultSchema is the fixed shape of a SummarizeResult.
var ResultSchema = OutputSchema{
	Name: "review_summary",
	Properties: []SchemaProperty{
		{Name: ProsField, Description: "Short bullet points describing recurring positive sentiment."},
		{Name: ConsField, Description: "Short bullet points describing recurring negative sentiment."},
	},
}

// Required lists every property name in declaration order.
func (s OutputSchema) Required() []string {
	names := make([]string, 0, len(s.Properties))
	for _, property := range s.Properties {
		names = append(names, property.Name)
	}
	return names
}

// JSON renders the schema as a JSON Schema document for providers that only
// accept it as prompt text.
func (s OutputSchema) JSON() string {
	properties := make(map[string]any, len(s.Properties))
	for _, property := range s.Properties {
		properties[property.Name] = map[string]any{
			"type":        "array",
			"description": property.Description,
			"items":       map[string]string{"type": "string"},
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             s.Required(),
		"additionalProperties": false,
	}

	out, err := json.Marshal(schema)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ParseResult validates raw model output against ResultSchema. Code fences
// around the JSON are tolerated; anything else that is not an object with
// string-array "pros" and "cons" is rejected.
func ParseResult(raw string) (models.SummarizeResult, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(utils.CleanJSONResponse(raw)), &object); err != nil || object == nil {
		return models.SummarizeResult{}, &SchemaValidationError{Reason: "output is not a JSON object"}
	}

	pros, err := stringArrayField(object, ProsField)
	if err != nil {
		return models.SummarizeResult{}, err
	}

	cons, err := stringArrayField(object, ConsField)
	if err != nil {
		return models.SummarizeResult{}, err
	}

	return models.SummarizeResult{Pros: pros, Cons: cons}, nil
}

func stringArrayField(object map[string]json.RawMessage, field string) ([]string, error) {
	value, ok := object[field]
	if !ok {
		return nil, &SchemaValidationError{Field: field, Reason: "field is missing"}
	}

	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil, &SchemaValidationError{Field: field, Reason: "field is null"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return nil, &SchemaValidationError{Field: field, Reason: "field is not an array"}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) || json.Unmarshal(item, &s) != nil {
			return nil, &SchemaValidationError{Field: field, Reason: "array contains a non-string element"}
		}
		out = append(out, s)
	}
	return out, nil
}
