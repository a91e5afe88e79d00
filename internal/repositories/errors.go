package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned by UserRepository implementations for unknown users
var ErrUserNotFound = errors.New("user not found")

// IsNotFoundError reports whether err means the requested row or user does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsDuplicateKeyError detects unique-constraint violations from postgres and sqlite
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}
