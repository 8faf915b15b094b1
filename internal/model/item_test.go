package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeYearsFromDays(t *testing.T) {
	assert.Equal(t, 0.0, AgeYearsFromDays(0))
	assert.Equal(t, 1.0, AgeYearsFromDays(365))
	assert.Equal(t, 0.5, AgeYearsFromDays(180))
	assert.Equal(t, 2.7, AgeYearsFromDays(1000))
}

func TestUserUpdate_Columns(t *testing.T) {
	first := "Ann"
	hash := "$2a$10$abc"

	upd := UserUpdate{FirstName: &first, PasswordHash: &hash}

	assert.False(t, upd.IsEmpty())
	assert.Equal(t, map[string]interface{}{
		"first_name":    "Ann",
		"password_hash": "$2a$10$abc",
	}, upd.Columns())
	assert.True(t, UserUpdate{}.IsEmpty())
}
