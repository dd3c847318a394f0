package validation

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "test@example.com", false},
		{"valid email with subdomain", "user@mail.example.com", false},
		{"valid email with plus", "user+tag@example.com", false},
		{"missing @", "testexample.com", true},
		{"missing domain", "test@", true},
		{"missing local part", "@example.com", true},
		{"empty string", "", true},
		{"spaces in email", "test @example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateEmail(%q) error = %v", tt.email, err)
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "João Silva", false},
		{"single name", "Ana", false},
		{"empty name", "", true},
		{"only spaces", "    ", true},
		{"name too short", "J", true},
		{"name with hyphen", "Mary-Jane", false},
		{"name with apostrophe", "O'Brien", false},
		{"name too long", strings.Repeat("a", 81), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateName(%q) error = %v", tt.input, err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "password123", false},
		{"password exactly 8 characters", "pass1234", false},
		{"password too short", "pass123", true},
		{"empty password", "", true},
		{"long password", "thisIsAVeryLongPasswordThatShouldBeValid123", false},
		{"beyond bcrypt limit", strings.Repeat("x", 73), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			assert.Equal(t, tt.wantErr, err != nil, "ValidatePassword() error = %v", err)
		})
	}
}

func TestValidateGroupName(t *testing.T) {
	assert.NoError(t, ValidateGroupName(" Shalom "))
	assert.Error(t, ValidateGroupName("   "))
	assert.Error(t, ValidateGroupName(strings.Repeat("g", 61)))
}

func TestValidateAvatar(t *testing.T) {
	png := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	big := "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, 2048))

	tests := []struct {
		name    string
		avatar  string
		wantErr bool
	}{
		{"empty clears avatar", "", false},
		{"png data uri", png, false},
		{"not a data uri", "https://example.com/a.png", true},
		{"not an image", "data:text/plain;base64,aGVsbG8=", true},
		{"too large", big, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAvatar(tt.avatar, 1024)
			assert.Equal(t, tt.wantErr, err != nil, "error = %v", err)
		})
	}
}

func TestValidateNotes(t *testing.T) {
	assert.NoError(t, ValidateNotes(""))
	assert.NoError(t, ValidateNotes(strings.Repeat("é", MaxNotesLength)))
	assert.Error(t, ValidateNotes(strings.Repeat("é", MaxNotesLength+1)))
}

func TestStruct(t *testing.T) {
	type loginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	require.NoError(t, Struct(loginInput{Email: "a@b.com", Password: "x"}))

	err := Struct(loginInput{Email: "nope"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	fields := Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, Error{Field: "email", Message: "must be a valid email address"}, fields[0])
	assert.Equal(t, Error{Field: "password", Message: "is required"}, fields[1])
}

func TestFieldsFromJoinedErrors(t *testing.T) {
	err := errors.Join(ValidateName(""), ValidateEmail("bad"), nil)
	fields := Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, "email", fields[1].Field)

	assert.False(t, IsValidationError(errors.New("plain")))
	assert.Empty(t, Fields(nil))
}
