package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// User owns one or more accounts.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername validates a username.
func ValidateUsername(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinUsernameLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidUsername, MinUsernameLength)
	}

	if len(name) > MaxUsernameLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidUsername, MaxUsernameLength)
	}

	if !usernameRegex.MatchString(name) {
		return fmt.Errorf("%w: only letters, digits, '.', '_' and '-' are allowed", ErrInvalidUsername)
	}

	return nil
}
