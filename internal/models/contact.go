package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// ContactDraft is the contact form as submitted by a visitor
type ContactDraft struct {
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Email   string `json:"email" form:"email" validate:"required,email,max=320"`
	Subject string `json:"subject" form:"subject" validate:"required,max=300"`
	Message string `json:"message" form:"message" validate:"required,max=10000"`
}

// Normalize trims surrounding whitespace from every field
func (d *ContactDraft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Subject = strings.TrimSpace(d.Subject)
	d.Message = strings.TrimSpace(d.Message)
}

// Validate validates the draft using the validator
func (d *ContactDraft) Validate() error {
	return validate.Struct(d)
}

// ContactMessage is an accepted submission as stored
type ContactMessage struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	RemoteHash  string     `json:"remote_hash"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// NewContactMessage builds a message record from a validated draft
func NewContactMessage(d ContactDraft, remoteHash string, now time.Time) ContactMessage {
	return ContactMessage{
		ID:         uuid.New(),
		Name:       d.Name,
		Email:      d.Email,
		Subject:    d.Subject,
		Message:    d.Message,
		RemoteHash: remoteHash,
		CreatedAt:  now.UTC(),
	}
}
