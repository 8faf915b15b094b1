package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered marketplace member.
type User struct {
	ID           string     `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FirstName    string     `json:"firstName" gorm:"size:255"`
	LastName     string     `json:"lastName" gorm:"size:255"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// BeforeCreate assigns an id before the first insert.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserUpdate lists the fields a profile update may change. Nil fields are
// left untouched.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
}

// IsEmpty reports whether no field is set.
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.PasswordHash == nil
}

// Columns returns the column/value pairs to persist.
func (u UserUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 3)
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.PasswordHash != nil {
		cols["password_hash"] = *u.PasswordHash
	}
	return cols
}
