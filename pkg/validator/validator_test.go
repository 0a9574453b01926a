package validator

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	BirthDate            string `json:"birth_date" binding:"required,datetime=2006-01-02,before_today"`
	Role                 string `json:"role_name" binding:"required,oneof=admin doctor patient guardian"`
}

func TestTranslateFieldErrors(t *testing.T) {
	require.NoError(t, Register())

	req := signup{
		Email:                "not-an-email",
		Password:             "short",
		PasswordConfirmation: "different",
		BirthDate:            time.Now().AddDate(0, 0, 1).Format(DateLayout),
		Role:                 "nurse",
	}

	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	appErr := Translate(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode())
	assert.Equal(t, []string{"The email must be a valid email address."}, appErr.Fields["email"])
	assert.Equal(t, []string{"The password must be at least 8 characters."}, appErr.Fields["password"])
	assert.Equal(t, []string{"The password confirmation does not match."}, appErr.Fields["password_confirmation"])
	assert.Equal(t, []string{"The birth date must be a date before today."}, appErr.Fields["birth_date"])
	assert.Equal(t, []string{"The selected role name is invalid."}, appErr.Fields["role_name"])
}

func TestRegisterIsIdempotent(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())

	ok := signup{
		Email:                "jane@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
		BirthDate:            "1990-05-01",
		Role:                 "patient",
	}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))
}
