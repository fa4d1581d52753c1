package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
)

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// lookupError maps sql.ErrNoRows and malformed ids to a NOT_FOUND error and anything
// else to INTERNAL_ERROR.
func lookupError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) || appErrors.IsInvalidTextRepresentation(err) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

// writeError maps PostgreSQL constraint violations raised by a write.
func writeError(err error, duplicate, internal string) error {
	switch {
	case appErrors.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrDuplicateResource.Code, appErrors.ErrDuplicateResource.Status, duplicate)
	case appErrors.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "referenced resource not found")
	default:
		return appErrors.Internal(err, internal)
	}
}

func validationError(v *validator.Validate, payload interface{}, message string) error {
	if err := v.Struct(payload); err != nil {
		return appErrors.Validation(err, message)
	}
	return nil
}

func paginationFor(page, size, total int) *models.Pagination {
	p := models.Pagination{Page: page, PageSize: size}.Normalize()
	p.TotalCount = total
	return &p
}

func lowerEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword returns an empty hash for an empty password. Login refuses such accounts.
func hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.Internal(err, "failed to hash password")
	}
	return string(hash), nil
}
