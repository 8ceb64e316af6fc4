// internal/api/schema.go
package api

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// sendEmailSchema checks field presence on the notification endpoint. It
// deliberately does not constrain field content: an unknown role falls back
// to the default welcome template.
const sendEmailSchema = `{
	"type": "object",
	"required": ["fullName", "email", "role"],
	"properties": {
		"fullName":       {"type": "string", "minLength": 1},
		"email":          {"type": "string", "minLength": 1},
		"role":           {"type": "string", "minLength": 1},
		"referralSource": {"type": "string"}
	}
}`

var compiledSendEmailSchema = gojsonschema.NewStringLoader(sendEmailSchema)

func validateSendEmailBody(raw []byte) error {
	result, err := gojsonschema.Validate(compiledSendEmailSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("invalid payload: %v", result.Errors())
	}
	return nil
}
