package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// UserResponse is the public view of a user. The password hash never leaves
// the service layer.
type UserResponse struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Role           model.Role    `json:"role"`
	Phone          string        `json:"phone"`
	BirthDate      string        `json:"birth_date"`
	DocumentType   *string       `json:"document_type,omitempty"`
	DocumentNumber string        `json:"document_number"`
	Gender         *model.Gender `json:"gender,omitempty"`
	Address        *string       `json:"address,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Phone:          u.Phone,
		BirthDate:      u.BirthDate.Format("2006-01-02"),
		DocumentType:   u.DocumentType,
		DocumentNumber: u.DocumentNumber,
		Gender:         u.Gender,
		Address:        u.Address,
		CreatedAt:      u.CreatedAt,
	}
}
