// Package services implements the resource operations. Every method receives
// the caller identity explicitly and returns apierr errors for client faults.
package services

import (
	"errors"
	"fmt"
	"strings"

	"course-management-backend/apierr"
	"course-management-backend/repository"

	"github.com/shopspring/decimal"
)

// notFoundOr maps repository.ErrNotFound to a NotFound error with the given
// message and wraps anything else as an internal failure.
func notFoundOr(err error, op string, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierr.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func checkIDMatch(pathID, bodyID uint) error {
	if pathID != bodyID {
		return apierr.Validation("id in path (%d) does not match id in body (%d)", pathID, bodyID)
	}
	return nil
}

func requireText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apierr.Validation("%s is required", field)
	}
	return v, nil
}

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

func checkPassword(password string) error {
	if password == "" {
		return apierr.Validation("password is required")
	}
	if len(password) > maxPasswordBytes {
		return apierr.Validation("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apierr.Validation("price must not be negative")
	}
	return nil
}
