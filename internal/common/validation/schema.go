// internal/common/validation/schema.go

// Package validation checks inbound payloads against JSON schemas
// before they reach the store.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/models"
)

// jobSpecSchema covers every required job field; totalSlots must be a
// positive integer and paymentAmount non-negative.
var jobSpecSchema = gojsonschema.NewGoLoader(map[string]interface{}{
	"type": "object",
	"required": []string{
		"title", "description", "location", "date",
		"startTime", "endTime", "totalSlots", "paymentAmount",
	},
	"properties": map[string]interface{}{
		"title":       map[string]interface{}{"type": "string", "minLength": 1},
		"description": map[string]interface{}{"type": "string", "minLength": 1},
		"location":    map[string]interface{}{"type": "string", "minLength": 1},
		"date":        map[string]interface{}{"type": "string", "minLength": 1},
		"startTime":   map[string]interface{}{"type": "string", "minLength": 1},
		"endTime":     map[string]interface{}{"type": "string", "minLength": 1},
		"totalSlots":  map[string]interface{}{"type": "integer", "minimum": 1},
		"paymentAmount": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
		},
	},
})

// ValidateJobSpec returns a VALIDATION_ERROR listing every failed
// field, or nil when the spec is acceptable.
func ValidateJobSpec(spec models.JobSpec) error {
	result, err := gojsonschema.Validate(jobSpecSchema, gojsonschema.NewGoLoader(spec))
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("schema evaluation failed: %v", err))
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return errors.NewValidationError(strings.Join(details, "; "))
	}

	return nil
}
