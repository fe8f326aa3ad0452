package validate

import (
	"fmt"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/xeipuuv/gojsonschema"
)

// DetailFields are the editable form fields, named as the form sends them.
var DetailFields = []string{
	"clientName",
	"subClientName",
	"candidateName",
	"employeeId",
	"phoneNumber",
	"alternatePhone",
	"address",
	"pincode",
	"areaName",
	"city",
	"state",
	"posStartDate",
	"posEndDate",
	"residentType",
	"relationshipWithRespondent",
	"typeOfID",
}

var submissionSchema = gojsonschema.NewGoLoader(buildSubmissionSchema())

func buildSubmissionSchema() map[string]any {
	properties := make(map[string]any, len(DetailFields)+2*entity.MaxPhotoSlots)
	required := make([]any, 0, len(DetailFields))
	dependencies := make(map[string]any, 2*entity.MaxPhotoSlots)

	for _, f := range DetailFields {
		properties[f] = map[string]any{"type": "string"}
		required = append(required, f)
	}

	for slot := 1; slot <= entity.MaxPhotoSlots; slot++ {
		photo, meta := PhotoField(slot), MetaField(slot)

		properties[photo] = map[string]any{"type": "string", "minLength": 1}
		properties[meta] = map[string]any{"type": "string", "minLength": 1}
		dependencies[photo] = []any{meta}
		dependencies[meta] = []any{photo}
	}

	return map[string]any{
		"type":         "object",
		"properties":   properties,
		"required":     required,
		"dependencies": dependencies,
	}
}

func PhotoField(slot int) string { return fmt.Sprintf("photo%d", slot) }

func MetaField(slot int) string { return fmt.Sprintf("meta%d", slot) }

// Submission checks the shape of a submitted form: every detail field present
// as a string and photos paired with their capture metadata. The first
// violation is returned as a ValidationError.
func Submission(doc map[string]any) error {
	result, err := gojsonschema.Validate(submissionSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate - Submission - gojsonschema.Validate: %w", err)
	}

	if result.Valid() {
		return nil
	}

	desc := result.Errors()[0]

	return errs.NewValidationError(fieldOf(desc), desc.Description())
}

// fieldOf names the offending form field. Errors raised on the object itself
// carry the field in their details.
func fieldOf(desc gojsonschema.ResultError) string {
	switch desc.Type() {
	case "required":
		if p, ok := desc.Details()["property"].(string); ok {
			return p
		}
	case "missing_dependency":
		if p, ok := desc.Details()["dependency"].(string); ok {
			return p
		}
	}

	return desc.Field()
}
