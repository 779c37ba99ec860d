package teacher

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("teacher not found")
	ErrDuplicateTelegramID = errors.New("teacher with this Telegram ID already exists")
)

// Teacher is a member of staff who can be assigned to classes and evaluate students.
type Teacher struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   sql.NullString
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name, skipping an empty last name.
func (t *Teacher) FullName() string {
	if t.LastName.Valid && t.LastName.String != "" {
		return t.FirstName + " " + t.LastName.String
	}
	return t.FirstName
}
