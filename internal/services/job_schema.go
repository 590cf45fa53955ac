package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"debo-engineering/job-portal/internal/apperrors"
)

const jobPropertiesSchema = `{
	"title":              {"type": "string", "minLength": 1, "maxLength": 200},
	"description":        {"type": "string", "minLength": 1},
	"requirements":       {"type": "array", "items": {"type": "string"}},
	"responsibilities":   {"type": "array", "items": {"type": "string"}},
	"benefits":           {"type": "array", "items": {"type": "string"}},
	"skills":             {"type": "array", "items": {"type": "string"}},
	"location":           {"type": "string"},
	"type":               {"type": "string", "minLength": 1},
	"experienceLevel":    {"type": "string"},
	"deadline":           {"type": ["string", "null"], "format": "date-time"},
	"isInternship":       {"type": "boolean"},
	"minGadaLevel":       {"type": ["string", "null"]},
	"internshipDuration": {"type": ["integer", "null"], "minimum": 1},
	"stipendRange":       {"type": "string"},
	"category":           {"type": "string"},
	"status":             {"type": "string", "enum": ["active", "closed", "archived"]}
}`

var (
	createJobSchema = mustCompileSchema(`{
	"type": "object",
	"required": ["title", "description", "type"],
	"properties": ` + jobPropertiesSchema + `
}`)

	updateJobSchema = mustCompileSchema(`{
	"type": "object",
	"minProperties": 1,
	"properties": ` + jobPropertiesSchema + `
}`)
)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid job schema: %v", err))
	}
	return schema
}

// validateJobPayload checks a raw job body against the create or update schema.
func validateJobPayload(schema *gojsonschema.Schema, payload []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return apperrors.NewValidation(fmt.Sprintf("invalid job payload: %v", err), nil)
	}
	if result.Valid() {
		return nil
	}

	fields := make(map[string]string, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			if property, ok := desc.Details()["property"].(string); ok {
				field = property
			}
		}
		fields[field] = desc.Description()
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return apperrors.NewValidation("job validation failed: "+strings.Join(names, ", "), fields)
}
