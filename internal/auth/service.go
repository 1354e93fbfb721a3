package auth

import (
	"context"
	"time"

	"textok-auth/internal/content"
	"textok-auth/internal/events"
	"textok-auth/internal/logger"
	"textok-auth/internal/session"
	"textok-auth/internal/storage"
	"textok-auth/internal/token"
	"textok-auth/internal/user"
	"textok-auth/internal/verification"

	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Email             string
	Username          string
	Password          string
	Nickname          string
	DateOfBirth       *time.Time
	Gender            string
	VerificationToken string
}

type LoginRequest struct {
	Username string
	Password string
}

type PasswordResetRequest struct {
	Email             string
	Username          string
	NewPassword       string
	VerificationToken string
}

type CompleteOAuth2JoinRequest struct {
	TemporaryToken string
	Nickname       string
	DateOfBirth    *time.Time
	Gender         string
}

// Service owns signup, login, password reset, OAuth2 completion and the
// hard-delete orchestration. Token issuance and session replacement stay
// with the handlers; this service only validates and mutates state.
type Service struct {
	users        user.Repository
	deletion     user.DeletionRepository
	content      content.Repository
	sessions     session.Store
	verification verification.Store
	storage      storage.FileStorage
	events       events.Publisher
	codec        *token.Codec
}

func NewService(
	users user.Repository,
	deletion user.DeletionRepository,
	contentRepo content.Repository,
	sessions session.Store,
	verificationStore verification.Store,
	fileStorage storage.FileStorage,
	publisher events.Publisher,
	codec *token.Codec,
) *Service {
	return &Service{
		users:        users,
		deletion:     deletion,
		content:      contentRepo,
		sessions:     sessions,
		verification: verificationStore,
		storage:      fileStorage,
		events:       publisher,
		codec:        codec,
	}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*user.User, error) {
	valid, err := s.verification.IsValidToken(ctx, req.Email, req.VerificationToken)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, NewError(CodeVerificationRequired, "email verification required")
	}

	existing, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewError(CodeDuplicateUsername, "username already taken")
	}

	taken, err := s.users.ExistsByNickname(ctx, req.Nickname)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewError(CodeDuplicateNickname, "nickname already taken")
	}

	if err := s.verification.DeleteToken(ctx, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:       req.Email,
		Username:    req.Username,
		Nickname:    req.Nickname,
		Password:    string(hash),
		Role:        token.RoleUser,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials only. The handler issues tokens and replaces
// the session afterwards.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*user.User, error) {
	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewError(CodeBadCredentials, "unknown username")
	}

	if err := s.CheckPassword(u, req.Password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) CheckPassword(u *user.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return NewError(CodeBadCredentials, "password does not match")
	}
	return nil
}

func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.sessions.Delete(ctx, userID)
}

// PasswordReset sets a new password after email verification. Existing
// sessions deliberately survive; only the credential changes.
func (s *Service) PasswordReset(ctx context.Context, req PasswordResetRequest) error {
	valid, err := s.verification.IsValidToken(ctx, req.Email, req.VerificationToken)
	if err != nil {
		return err
	}
	if !valid {
		return NewError(CodeVerificationRequired, "email verification required")
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if u == nil {
		return NewError(CodeBadCredentials, "unknown username")
	}

	if err := s.verification.DeleteToken(ctx, req.Email); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, string(hash))
}

// CompleteOAuth2Join finalizes a placeholder account created by an OAuth2
// login: the temporary token proves the login happened within the last
// five minutes.
func (s *Service) CompleteOAuth2Join(ctx context.Context, req CompleteOAuth2JoinRequest) (*user.User, error) {
	if !s.codec.Verify(req.TemporaryToken) {
		return nil, NewError(CodeVerificationRequired, "temporary token expired, restart the signup")
	}

	taken, err := s.users.ExistsByNickname(ctx, req.Nickname)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewError(CodeDuplicateNickname, "nickname already taken")
	}

	userID, err := s.codec.ExtractUserID(req.TemporaryToken)
	if err != nil {
		return nil, WrapError(CodeVerificationRequired, "temporary token invalid", err)
	}

	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Nickname = req.Nickname
	u.DateOfBirth = req.DateOfBirth
	u.Gender = req.Gender
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindOrCreateOAuth2User upserts the account an external identity maps
// to. First login creates a placeholder with no nickname; the completion
// step fills it in later.
func (s *Service) FindOrCreateOAuth2User(ctx context.Context, externalUsername, profileImgURL string) (*user.User, error) {
	u, err := s.users.FindByUsername(ctx, externalUsername)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	u = &user.User{
		Username:      externalUsername,
		Role:          token.RoleUser,
		ProfileImgURL: profileImgURL,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewError(CodeUserNotFound, "user not found")
	}
	return u, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewError(CodeBadCredentials, "unknown username")
	}
	return u, nil
}

func (s *Service) GetEmailByUsername(ctx context.Context, username string) (string, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func (s *Service) IsAvailableUsername(ctx context.Context, username string) (bool, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return u == nil, nil
}

func (s *Service) IsAvailableNickname(ctx context.Context, nickname string) (bool, error) {
	taken, err := s.users.ExistsByNickname(ctx, nickname)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// HardDelete irreversibly removes an account and everything it owns.
// External side effects run first so a crash mid-sequence leaves the
// account row intact and the whole operation retryable; only the final
// batch delete destroys the identity.
func (s *Service) HardDelete(ctx context.Context, userID int64) error {
	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, userID); err != nil {
		return err
	}

	if err := s.storage.DeleteFile(ctx, u.ProfileImgURL); err != nil {
		return WrapError(CodeImageDeleteFailed, "failed to delete profile image", err)
	}

	ttsURLs, err := s.content.FindTTSURLsByUserID(ctx, userID)
	if err != nil {
		return err
	}
	failed := 0
	for _, ttsURL := range ttsURLs {
		if ttsURL == "" {
			continue
		}
		if err := s.storage.DeleteTTSFile(ctx, ttsURL); err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Warn("tts cleanup finished with failures", map[string]any{
			"user_id": userID,
			"total":   len(ttsURLs),
			"failed":  failed,
		})
	}

	shorlogIDs, err := s.content.FindShorlogIDsByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range shorlogIDs {
		if err := s.events.PublishDeletion(ctx, events.NewDeletionEvent(events.KindShorlogDeleted, id)); err != nil {
			return err
		}
	}

	blogIDs, err := s.content.FindBlogIDsByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range blogIDs {
		if err := s.events.PublishDeletion(ctx, events.NewDeletionEvent(events.KindBlogDeleted, id)); err != nil {
			return err
		}
	}

	return s.deletion.DeleteUserCompletely(ctx, userID)
}
