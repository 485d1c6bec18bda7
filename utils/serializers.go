package utils

import (
	"strings"
	"time"

	"gymdesk_go/models"
)

// Compact representations used across APIs
type AccountShort struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

type Sender struct {
	Type string `json:"type"` // "system" or "account"
	ID   *uint  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Recipient struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

type NotificationDTO struct {
	ID        uint         `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	AccountID uint         `json:"account_id"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Type      string       `json:"type"`
	Read      bool         `json:"read"`
	ReadAt    *time.Time   `json:"read_at,omitempty"`
	Account   AccountShort `json:"account"`
	Sender    Sender       `json:"sender"`
	Recipient Recipient    `json:"recipient"`
}

// ToAccountShort maps an account to its compact form. The display name falls
// back to the email local-part when no profile name is attached.
func ToAccountShort(account models.Account) AccountShort {
	name := ""
	if account.TrainerProfile != nil {
		name = account.TrainerProfile.Name
	} else if account.TraineeProfile != nil {
		name = account.TraineeProfile.Name
	}
	if name == "" && account.Email != "" {
		parts := strings.Split(account.Email, "@")
		name = parts[0]
	}
	return AccountShort{
		ID:    account.ID,
		Email: account.Email,
		Role:  account.Role,
		Name:  name,
	}
}

// ToNotificationDTO maps a models.Notification to the compact DTO.
// Assumptions: caller has preloaded Account and its profiles when possible.
func ToNotificationDTO(n models.Notification) NotificationDTO {
	sender := Sender{Type: "system", Name: "Notification Service"}
	recipient := Recipient{Type: "account", ID: n.AccountID}

	return NotificationDTO{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		AccountID: n.AccountID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		Account:   ToAccountShort(n.Account),
		Sender:    sender,
		Recipient: recipient,
	}
}
