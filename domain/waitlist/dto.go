package waitlist

import (
	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
)

const (
	MessageJoined             = "Successfully joined waitlist"
	MessageListed             = "Waitlist retrieved successfully"
	MessageInvalidEmail       = "Valid email is required"
	MessageDuplicate          = "Email already registered"
	MessageConnectionError    = "Database connection error"
	MessageStorageUnavailable = "Waitlist storage is unavailable"
	MessageUnexpected         = "Something went wrong"
	MessageUnauthorized       = "A valid admin token is required"
)

// JoinWaitlistRequest accepts JSON or form-encoded bodies.
type JoinWaitlistRequest struct {
	Email string `json:"email" form:"email" binding:"required,contains=@"`
}

type JoinResponse struct {
	Email    string `json:"email"`
	JoinedAt string `json:"joined_at"`
}

type ListResponse struct {
	Emails []string `json:"emails"`
	Count  int      `json:"count"`
}

func ToJoinResponse(user *models.WaitlistUser) JoinResponse {
	if user == nil {
		return JoinResponse{}
	}
	return JoinResponse{
		Email:    user.Email,
		JoinedAt: user.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
}

func ToListResponse(emails []string) ListResponse {
	if emails == nil {
		emails = []string{}
	}
	return ListResponse{Emails: emails, Count: len(emails)}
}
