package createdoi

import (
	_ "embed"

	"bulk-doi/internal/common/datacite"
	"bulk-doi/internal/common/validation"
)

//go:embed payload_schema.json
var payloadSchemaJSON string

var payloadSchema = validation.MustCompileSchema(payloadSchemaJSON)

// ValidatePayload checks a create request against the DataCite schema.
func ValidatePayload(payload *datacite.Payload) (*validation.ValidationResult, error) {
	return payloadSchema.ValidateDocument(payload)
}
