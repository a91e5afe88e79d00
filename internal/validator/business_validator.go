package validator

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// BusinessValidator handles struct tags plus cross-field rules
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateContentCreate requires the payload field matching the content type
func (bv *BusinessValidator) ValidateContentCreate(req *CreateContentRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}

	switch req.Type {
	case models.ContentText:
		if isBlank(req.TextContent) {
			errs = append(errs, ValidationError{Field: "TextContent", Message: "is required for text content", Rule: "content_payload"})
		}
	case models.ContentPDF, models.ContentLink:
		if isBlank(req.FileURL) {
			errs = append(errs, ValidationError{Field: "FileURL", Message: "is required for " + req.Type.String() + " content", Rule: "content_payload"})
		}
	case models.ContentVideo:
		if isBlank(req.VideoURL) {
			errs = append(errs, ValidationError{Field: "VideoURL", Message: "is required for video content", Rule: "content_payload"})
		}
	}

	return errs
}

// ValidateQuizCreate checks tags and rejects duplicate question text within one quiz
func (bv *BusinessValidator) ValidateQuizCreate(req *CreateQuizRequest) ValidationErrors {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return errs
	}

	seen := make(map[string]bool, len(req.Questions))
	for _, q := range req.Questions {
		key := strings.ToLower(strings.TrimSpace(q.Question))
		if seen[key] {
			errs = append(errs, ValidationError{Field: "Questions", Message: "contains a duplicate question", Value: q.Question, Rule: "unique_question"})
			continue
		}
		seen[key] = true
	}

	return errs
}

func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	bv.validate.RegisterValidation("answer_letter", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.AnswerLetters, strings.ToUpper(fl.Field().String()))
	})

	bv.validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		return models.ContentType(fl.Field().Int()).IsValid()
	})
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
