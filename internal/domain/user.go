package domain

import (
	"strings"
	"time"
)

const (
	ExternalIDMaxLen  = 100
	EmailMaxLen       = 256
	DisplayNameMaxLen = 200
	FirstNameMaxLen   = 100
	LastNameMaxLen    = 100
)

// User is a local account correlated with an external identity provider subject.
// IsActive defaults to true in both schema paths, so a create never stores
// false; deactivation goes through an update.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ExternalID  string     `gorm:"size:100;not null;uniqueIndex" json:"external_id"`
	Email       string     `gorm:"size:256;not null;uniqueIndex" json:"email"`
	DisplayName *string    `gorm:"size:200" json:"display_name,omitempty"`
	FirstName   *string    `gorm:"size:100" json:"first_name,omitempty"`
	LastName    *string    `gorm:"size:100" json:"last_name,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
}

// NewUser builds an active user stamped with now (converted to UTC).
func NewUser(externalID, email string, now time.Time) *User {
	return &User{
		ExternalID: strings.TrimSpace(externalID),
		Email:      NormalizeEmail(email),
		CreatedAt:  now.UTC(),
		IsActive:   true,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Validate() error {
	var errs fieldErrors
	errs.required("external_id", u.ExternalID)
	errs.maxLen("external_id", u.ExternalID, ExternalIDMaxLen)
	errs.required("email", u.Email)
	errs.maxLen("email", u.Email, EmailMaxLen)
	errs.maxLenPtr("display_name", u.DisplayName, DisplayNameMaxLen)
	errs.maxLenPtr("first_name", u.FirstName, FirstNameMaxLen)
	errs.maxLenPtr("last_name", u.LastName, LastNameMaxLen)
	return errs.err()
}
