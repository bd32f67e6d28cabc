package account

import (
	"context"
	"errors"

	accountRepo "authlink/database/repository/account"
	"authlink/models"
	"authlink/services/auth"

	"go.uber.org/zap"
)

var ErrMirrorDisabled = errors.New("account mirror disabled")

// AccountService keeps a persistent copy of each identity's linked providers.
type AccountService interface {
	// Sync records the providers of sess.
	Sync(sess *models.Session) error
	// Profile returns the stored account for uid.
	Profile(uid string) (*models.Account, error)
	// LinkedCount reports how many mirrored accounts have both email and phone linked.
	LinkedCount() (int64, error)
	// Observe is a session cache subscriber feeding Sync asynchronously.
	Observe(uid string, entry models.SessionEntry)
	// Run drains queued syncs until ctx is done.
	Run(ctx context.Context)
}

// DefaultAccountService is the production implementation. A nil Repo disables the mirror.
type DefaultAccountService struct {
	Repo   accountRepo.AccountRepository
	Logger *zap.Logger
	queue  chan *models.Session
}

func NewDefaultAccountService(repo accountRepo.AccountRepository, logger *zap.Logger, queueSize int) *DefaultAccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAccountService{Repo: repo, Logger: logger, queue: make(chan *models.Session, queueSize)}
}

// FromSession builds the mirror record for sess.
func FromSession(sess *models.Session) *models.Account {
	presence := auth.Presence(sess)
	return &models.Account{
		UID:         sess.UID,
		Email:       sess.Email,
		PhoneNumber: sess.PhoneNumber,
		Providers:   append([]string(nil), sess.Providers...),
		EmailLinked: presence.EmailLinked,
		PhoneLinked: presence.PhoneLinked,
	}
}

func (s *DefaultAccountService) Sync(sess *models.Session) error {
	if s.Repo == nil {
		return ErrMirrorDisabled
	}
	return s.Repo.Upsert(FromSession(sess))
}

func (s *DefaultAccountService) Profile(uid string) (*models.Account, error) {
	if s.Repo == nil {
		return nil, ErrMirrorDisabled
	}
	return s.Repo.GetByUID(uid)
}

func (s *DefaultAccountService) LinkedCount() (int64, error) {
	if s.Repo == nil {
		return 0, ErrMirrorDisabled
	}
	return s.Repo.CountLinked()
}

// Observe never blocks the publisher; a full queue drops the update.
func (s *DefaultAccountService) Observe(uid string, entry models.SessionEntry) {
	if s.Repo == nil || !entry.Authenticated() {
		return
	}
	select {
	case s.queue <- entry.Session:
	default:
		s.Logger.Warn("Account sync queue full, dropping update", zap.String("uid", uid))
	}
}

func (s *DefaultAccountService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sess := <-s.queue:
			if err := s.Sync(sess); err != nil {
				s.Logger.Error("Account sync failed", zap.String("uid", sess.UID), zap.Error(err))
			}
		}
	}
}
