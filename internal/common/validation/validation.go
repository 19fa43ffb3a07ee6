// internal/common/validation/validation.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// submissionSchema validates the decoded /apply payload before it reaches
// the lifecycle controller.
var submissionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"user_id": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"username": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"answers": map[string]interface{}{
			"type":          "object",
			"minProperties": 1,
			"additionalProperties": map[string]interface{}{
				"type": "string",
			},
		},
		"access_token": map[string]interface{}{
			"type": "string",
		},
	},
	"required": []interface{}{"user_id", "username", "answers"},
}

var exchangeSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"code": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"redirect_uri": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
	},
	"required": []interface{}{"code", "redirect_uri"},
}

// ValidateSubmission checks an /apply payload against the submission schema.
// Returns a joined description of every violation, or nil.
func ValidateSubmission(payload map[string]interface{}) error {
	return validate(submissionSchema, payload)
}

// ValidateExchange checks an /oauth2/token payload.
func ValidateExchange(payload map[string]interface{}) error {
	return validate(exchangeSchema, payload)
}

func validate(schema, payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var descriptions []string
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}
		return fmt.Errorf("invalid payload: %s", strings.Join(descriptions, "; "))
	}

	return nil
}
