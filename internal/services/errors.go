package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/validator"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource already exists")
	ErrForbidden        = errors.New("access denied")
	ErrUnauthorized     = errors.New("authentication required")
	ErrBadRequest       = errors.New("bad request")
)

// Domain-specific sentinels wrap the generic ones so handlers can match either
var (
	ErrClassNotFound      = fmt.Errorf("class: %w", ErrNotFound)
	ErrSubjectNotFound    = fmt.Errorf("subject: %w", ErrNotFound)
	ErrChapterNotFound    = fmt.Errorf("chapter: %w", ErrNotFound)
	ErrContentNotFound    = fmt.Errorf("content: %w", ErrNotFound)
	ErrQuizNotFound       = fmt.Errorf("quiz: %w", ErrNotFound)
	ErrNoticeNotFound     = fmt.Errorf("notice: %w", ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("enrollment: %w", ErrNotFound)
	ErrLinkNotFound       = fmt.Errorf("parent link: %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user: %w", ErrNotFound)

	ErrClassNameTaken   = fmt.Errorf("class name: %w", ErrConflict)
	ErrAlreadyEnrolled  = fmt.Errorf("enrollment: %w", ErrConflict)
	ErrAlreadyLinked    = fmt.Errorf("parent link: %w", ErrConflict)
	ErrNotLinkedToChild = fmt.Errorf("child is not linked to parent: %w", ErrForbidden)
)

// ValidationErrors is re-exported so handlers only import services
type ValidationErrors = validator.ValidationErrors

// BusinessRuleError reports a request that is well-formed but breaks a domain rule
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

// PermissionError reports that a user may not perform an action on a resource
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// Unwrap lets errors.Is(err, ErrForbidden) match permission errors
func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}
