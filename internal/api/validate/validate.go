package validate

import (
	"fmt"
	"regexp"
	"time"
)

// UserID must be letters, digits, underscore or hyphen, 1-64 chars.
var userIDRx = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

const (
	maxTitleLen   = 200
	maxContentLen = 20000
	maxLogLen     = 5000
	maxMessageLen = 5000
)

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIDRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIDRx.String())
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Date accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func Date(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s must be RFC3339 or YYYY-MM-DD", field)
}

// -------- Request specific helpers ----------

// CreateEntry validates input for creating a journal entry.
func CreateEntry(title, content string) error {
	if err := NonEmpty("title", title); err != nil {
		return err
	}
	if err := MaxLen("title", title, maxTitleLen); err != nil {
		return err
	}
	if err := NonEmpty("content", content); err != nil {
		return err
	}
	return MaxLen("content", content, maxContentLen)
}

// UpdateEntry validates input for rewriting an entry's title and content.
func UpdateEntry(title, content string) error {
	return CreateEntry(title, content)
}

// LogContent validates a journal log addendum.
func LogContent(content string) error {
	if err := NonEmpty("content", content); err != nil {
		return err
	}
	return MaxLen("content", content, maxLogLen)
}

// ChatMessage validates one user chat message.
func ChatMessage(message string) error {
	if err := NonEmpty("message", message); err != nil {
		return err
	}
	return MaxLen("message", message, maxMessageLen)
}
