package verification

import (
	"context"

	"textok-auth/internal/logger"
	"textok-auth/internal/utils"
)

const codeLength = 6

// Sender delivers a verification code to an address. Actual mail
// transport lives outside this service.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}

// LogSender stands in where no mail transport is configured.
type LogSender struct{}

func (LogSender) SendCode(_ context.Context, email, _ string) error {
	logger.Info("verification code issued", map[string]any{
		"email": email,
	})
	return nil
}

type Service struct {
	store  Store
	sender Sender
}

func NewService(store Store, sender Sender) *Service {
	return &Service{store: store, sender: sender}
}

// SendCode issues a fresh code for the address, replacing any pending one.
func (s *Service) SendCode(ctx context.Context, email string) error {
	code, err := utils.RandomDigits(codeLength)
	if err != nil {
		return err
	}
	if err := s.store.SaveCode(ctx, email, code); err != nil {
		return err
	}
	return s.sender.SendCode(ctx, email, code)
}

// Verify reports whether the presented code matches the pending one.
// The code is kept: signup or password reset consumes it.
func (s *Service) Verify(ctx context.Context, email, code string) (bool, error) {
	return s.store.IsValidToken(ctx, email, code)
}
