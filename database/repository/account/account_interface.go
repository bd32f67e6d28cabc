package accountRepo

import (
	"errors"

	"authlink/models"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository stores the linked-provider mirror of each identity.
type AccountRepository interface {
	// Upsert creates or replaces the account for account.UID, keeping CreatedAt.
	Upsert(account *models.Account) error
	// GetByUID returns ErrAccountNotFound when no account is stored.
	GetByUID(uid string) (*models.Account, error)
	// CountLinked reports how many stored accounts have both email and phone linked.
	CountLinked() (int64, error)
}
