// Package validation checks request inputs before they reach a service. It has
// no side effects; every failure is an apperror.InvalidArgument naming the field.
package validation

import (
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int
	MaxPage = math.MaxInt32

	MinPasswordLength = 8
	// MaxPasswordLength is the bcrypt input limit in bytes
	MaxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,30}$`)

// ID checks that raw is a well-formed identifier and returns its canonical form
func ID(field, raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperror.InvalidField(field, fmt.Sprintf("Invalid %s", field))
	}
	return id.String(), nil
}

// OptionalID is ID for inputs that may be omitted
func OptionalID(field, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return ID(field, raw)
}

// IsID reports whether raw is a well-formed identifier
func IsID(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil
}

// RequiredString trims raw and rejects it when empty
func RequiredString(field, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", apperror.InvalidField(field, fmt.Sprintf("%s is required", field))
	}
	return value, nil
}

// OptionalString trims a supplied value. A nil input stays nil.
func OptionalString(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	return &value
}

// OptionalNonEmpty trims a supplied value and rejects it when it is empty
func OptionalNonEmpty(field string, raw *string) (*string, error) {
	value := OptionalString(raw)
	if value != nil && *value == "" {
		return nil, apperror.InvalidField(field, fmt.Sprintf("%s cannot be empty", field))
	}
	return value, nil
}

// Pagination parses page and limit. Missing values take the defaults; page
// must be between 1 and MaxPage and limit between 1 and MaxLimit.
func Pagination(pageRaw, limitRaw string, defaultLimit int) (int, int, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	page, err := positiveInt("page", pageRaw, DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	if page > MaxPage {
		return 0, 0, apperror.InvalidField("page", fmt.Sprintf("page must not exceed %d", MaxPage))
	}

	limit, err := positiveInt("limit", limitRaw, defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit > MaxLimit {
		return 0, 0, apperror.InvalidField("limit", fmt.Sprintf("limit must not exceed %d", MaxLimit))
	}

	return page, limit, nil
}

func positiveInt(field, raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.InvalidField(field, fmt.Sprintf("%s must be a number", field))
	}
	if n < 1 {
		return 0, apperror.InvalidField(field, fmt.Sprintf("%s must be at least 1", field))
	}
	return n, nil
}

// SortField returns raw when it is one of allowed, fallback when raw is empty
func SortField(raw, fallback string, allowed ...string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	for _, a := range allowed {
		if raw == a {
			return raw, nil
		}
	}
	return "", apperror.InvalidField("sortBy", fmt.Sprintf("sortBy must be one of %s", strings.Join(allowed, ", ")))
}

// SortDirection parses asc|desc and reports whether the order is descending.
// An empty value is descending.
func SortDirection(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	default:
		return false, apperror.InvalidField("sortType", "sortType must be asc or desc")
	}
}

// Email normalizes and checks an email address
func Email(raw string) (string, error) {
	email := models.NormalizeEmail(raw)
	if email == "" {
		return "", apperror.InvalidField("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.InvalidField("email", "invalid email address")
	}
	return email, nil
}

// Password enforces the password length bounds
func Password(field, raw string) (string, error) {
	if raw == "" {
		return "", apperror.InvalidField(field, fmt.Sprintf("%s is required", field))
	}
	if len(raw) < MinPasswordLength {
		return "", apperror.InvalidField(field, fmt.Sprintf("%s must be at least %d characters", field, MinPasswordLength))
	}
	if len(raw) > MaxPasswordLength {
		return "", apperror.InvalidField(field, fmt.Sprintf("%s must not exceed %d bytes", field, MaxPasswordLength))
	}
	return raw, nil
}

// Username lowercases a username and checks its characters
func Username(raw string) (string, error) {
	username := models.NormalizeUsername(raw)
	if username == "" {
		return "", apperror.InvalidField("username", "username is required")
	}
	if !usernamePattern.MatchString(username) {
		return "", apperror.InvalidField("username", "username must be 3-30 characters of letters, digits, '.', '_' or '-'")
	}
	return username, nil
}
