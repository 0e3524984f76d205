package handler

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindErrorMessageValidator(t *testing.T) {
	type login struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required"`
	}

	err := validator.New().Struct(login{Email: "not-an-email"})
	require.Error(t, err)

	msg := BindErrorMessage(err)
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password is required")
}

func TestBindErrorMessagePassthrough(t *testing.T) {
	err := errors.New("unexpected EOF")
	assert.Equal(t, "unexpected EOF", BindErrorMessage(err))
}
