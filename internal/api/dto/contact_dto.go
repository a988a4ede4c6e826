package dto

import (
	"time"

	"github.com/spec-kit/site-api/internal/domain"
)

// ContactCreateRequest is the public contact form payload.
type ContactCreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactPatchRequest is the staff partial update (mark read and the like).
type ContactPatchRequest struct {
	Status string `json:"status"`
}

// ContactReplyRequest is the staff reply payload.
type ContactReplyRequest struct {
	Message string `json:"message"`
}

// ReplyResponse represents one thread message.
type ReplyResponse struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	SentBy     string    `json:"sentBy"`
	IsFromUser bool      `json:"isFromUser"`
	SentAt     time.Time `json:"sentAt"`
}

// ContactResponse is the staff view of a submission.
type ContactResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Message     string               `json:"message"`
	Status      domain.ContactStatus `json:"status"`
	LastEmailID *string              `json:"lastEmailId,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	Replies     []ReplyResponse      `json:"replies"`
}

// NewReplyResponses maps a reply thread.
func NewReplyResponses(replies []domain.Reply) []ReplyResponse {
	result := make([]ReplyResponse, 0, len(replies))
	for _, r := range replies {
		result = append(result, ReplyResponse{
			ID:         r.ID,
			Message:    r.Message,
			SentBy:     r.SentBy,
			IsFromUser: r.IsFromUser,
			SentAt:     r.SentAt,
		})
	}
	return result
}

// NewContactResponse maps a submission.
func NewContactResponse(contact *domain.ContactSubmission) ContactResponse {
	return ContactResponse{
		ID:          contact.ID,
		Name:        contact.Name,
		Email:       contact.Email,
		Message:     contact.Message,
		Status:      contact.Status,
		LastEmailID: contact.LastEmailID,
		CreatedAt:   contact.CreatedAt,
		Replies:     NewReplyResponses(contact.Replies),
	}
}
