package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"textok-auth/internal/events"
	"textok-auth/internal/token"
	"textok-auth/internal/user"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----------------------------------------------------------------

type fakeUsers struct {
	users  map[int64]*user.User
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[int64]*user.User), nextID: 1}
}

func (f *fakeUsers) add(u *user.User) *user.User {
	if u.ID == 0 {
		u.ID = f.nextID
		f.nextID++
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	for _, u := range f.users {
		if u.Nickname != "" && u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.add(u)
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *user.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return fmt.Errorf("no user %d", u.ID)
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	u.Password = hash
	return nil
}

type fakeDeletion struct {
	log  *[]string
	fail error
}

func (f *fakeDeletion) DeleteUserCompletely(_ context.Context, userID int64) error {
	*f.log = append(*f.log, fmt.Sprintf("rows:%d", userID))
	return f.fail
}

type fakeContent struct {
	ttsURLs    []string
	shorlogIDs []int64
	blogIDs    []int64
}

func (f *fakeContent) FindTTSURLsByUserID(context.Context, int64) ([]string, error) {
	return f.ttsURLs, nil
}

func (f *fakeContent) FindShorlogIDsByUserID(context.Context, int64) ([]int64, error) {
	return f.shorlogIDs, nil
}

func (f *fakeContent) FindBlogIDsByUserID(context.Context, int64) ([]int64, error) {
	return f.blogIDs, nil
}

type fakeSessions struct {
	log    *[]string
	tokens map[int64]string
}

func newFakeSessions(log *[]string) *fakeSessions {
	return &fakeSessions{log: log, tokens: make(map[int64]string)}
}

func (f *fakeSessions) Save(_ context.Context, userID int64, refreshToken string) error {
	f.tokens[userID] = refreshToken
	return nil
}

func (f *fakeSessions) Find(_ context.Context, userID int64) (string, bool, error) {
	tok, ok := f.tokens[userID]
	return tok, ok, nil
}

func (f *fakeSessions) Require(ctx context.Context, userID int64) (string, error) {
	tok, ok, _ := f.Find(ctx, userID)
	if !ok {
		return "", errors.New("no session")
	}
	return tok, nil
}

func (f *fakeSessions) Delete(_ context.Context, userID int64) error {
	if f.log != nil {
		*f.log = append(*f.log, fmt.Sprintf("session:%d", userID))
	}
	delete(f.tokens, userID)
	return nil
}

type fakeVerification struct {
	codes map[string]string
}

func newFakeVerification() *fakeVerification {
	return &fakeVerification{codes: make(map[string]string)}
}

func (f *fakeVerification) SaveCode(_ context.Context, email, code string) error {
	f.codes[email] = code
	return nil
}

func (f *fakeVerification) IsValidToken(_ context.Context, email, code string) (bool, error) {
	stored, ok := f.codes[email]
	return ok && code != "" && stored == code, nil
}

func (f *fakeVerification) DeleteToken(_ context.Context, email string) error {
	delete(f.codes, email)
	return nil
}

type fakeStorage struct {
	log      *[]string
	failFile error
	failTTS  map[string]error
}

func (f *fakeStorage) DeleteFile(_ context.Context, url string) error {
	*f.log = append(*f.log, "image:"+url)
	return f.failFile
}

func (f *fakeStorage) DeleteTTSFile(_ context.Context, url string) error {
	*f.log = append(*f.log, "tts:"+url)
	return f.failTTS[url]
}

type fakePublisher struct {
	log       *[]string
	published []events.DeletionEvent
}

func (f *fakePublisher) PublishDeletion(_ context.Context, event events.DeletionEvent) error {
	*f.log = append(*f.log, fmt.Sprintf("event:%s:%d", event.Kind, event.TargetID))
	f.published = append(f.published, event)
	return nil
}

// ---- fixture --------------------------------------------------------------

type fixture struct {
	svc          *Service
	users        *fakeUsers
	deletion     *fakeDeletion
	content      *fakeContent
	sessions     *fakeSessions
	verification *fakeVerification
	storage      *fakeStorage
	publisher    *fakePublisher
	codec        *token.Codec
	log          []string
}

func newFixture() *fixture {
	f := &fixture{
		users:        newFakeUsers(),
		content:      &fakeContent{},
		verification: newFakeVerification(),
		codec:        token.NewCodec("service-test-secret", 30*time.Minute, 24*time.Hour),
	}
	f.deletion = &fakeDeletion{log: &f.log}
	f.sessions = newFakeSessions(&f.log)
	f.storage = &fakeStorage{log: &f.log}
	f.publisher = &fakePublisher{log: &f.log}
	f.svc = NewService(
		f.users, f.deletion, f.content, f.sessions,
		f.verification, f.storage, f.publisher, f.codec,
	)
	return f
}

func (f *fixture) addUser(t *testing.T, username, nickname, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return f.users.add(&user.User{
		Email:    username + "@textok.store",
		Username: username,
		Nickname: nickname,
		Password: string(hash),
		Role:     token.RoleUser,
	})
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	authErr, ok := AsError(err)
	require.True(t, ok, "expected auth error, got %v", err)
	require.Equal(t, code, authErr.Code)
}

// ---- signup ---------------------------------------------------------------

func TestSignupRequiresVerifiedEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, SignupRequest{
		Email:             "new@textok.store",
		Username:          "newuser",
		Password:          "pw123456",
		Nickname:          "newbie",
		VerificationToken: "123456",
	})
	requireCode(t, err, CodeVerificationRequired)
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser(t, "taken", "other", "pw")
	require.NoError(t, f.verification.SaveCode(ctx, "new@textok.store", "123456"))

	_, err := f.svc.Signup(ctx, SignupRequest{
		Email:             "new@textok.store",
		Username:          "taken",
		Password:          "pw123456",
		Nickname:          "newbie",
		VerificationToken: "123456",
	})
	requireCode(t, err, CodeDuplicateUsername)
}

func TestSignupUsernameIsCaseSensitive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser(t, "User1", "first", "pw")
	require.NoError(t, f.verification.SaveCode(ctx, "new@textok.store", "123456"))

	u, err := f.svc.Signup(ctx, SignupRequest{
		Email:             "new@textok.store",
		Username:          "user1",
		Password:          "pw123456",
		Nickname:          "second",
		VerificationToken: "123456",
	})
	require.NoError(t, err)
	require.Equal(t, "user1", u.Username)
}

func TestSignupRejectsDuplicateNickname(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser(t, "other", "samenick", "pw")
	require.NoError(t, f.verification.SaveCode(ctx, "new@textok.store", "123456"))

	_, err := f.svc.Signup(ctx, SignupRequest{
		Email:             "new@textok.store",
		Username:          "newuser",
		Password:          "pw123456",
		Nickname:          "samenick",
		VerificationToken: "123456",
	})
	requireCode(t, err, CodeDuplicateNickname)
}

func TestSignupConsumesVerificationToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.verification.SaveCode(ctx, "new@textok.store", "123456"))

	u, err := f.svc.Signup(ctx, SignupRequest{
		Email:             "new@textok.store",
		Username:          "newuser",
		Password:          "pw123456",
		Nickname:          "newbie",
		VerificationToken: "123456",
	})
	require.NoError(t, err)
	require.Equal(t, token.RoleUser, u.Role)
	require.NotEqual(t, "pw123456", u.Password)

	// Token is one-shot.
	valid, err := f.verification.IsValidToken(ctx, "new@textok.store", "123456")
	require.NoError(t, err)
	require.False(t, valid)
}

// ---- login ----------------------------------------------------------------

func TestLoginUnknownUsername(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "pw"})
	requireCode(t, err, CodeBadCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture()
	f.addUser(t, "alice", "alice", "correct")

	_, err := f.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "wrong"})
	requireCode(t, err, CodeBadCredentials)
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture()
	f.addUser(t, "alice", "alice", "correct")

	u, err := f.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "correct"})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
}

// ---- password reset -------------------------------------------------------

func TestPasswordResetKeepsSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser(t, "alice", "alice", "oldpw")
	require.NoError(t, f.sessions.Save(ctx, u.ID, "refresh-token"))
	require.NoError(t, f.verification.SaveCode(ctx, u.Email, "654321"))

	err := f.svc.PasswordReset(ctx, PasswordResetRequest{
		Email:             u.Email,
		Username:          u.Username,
		NewPassword:       "newpw123",
		VerificationToken: "654321",
	})
	require.NoError(t, err)

	// New credential works, old one does not.
	_, err = f.svc.Login(ctx, LoginRequest{Username: "alice", Password: "newpw123"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, LoginRequest{Username: "alice", Password: "oldpw"})
	requireCode(t, err, CodeBadCredentials)

	// The session record is untouched.
	_, found, err := f.sessions.Find(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, found)
}

func TestPasswordResetRequiresVerification(t *testing.T) {
	f := newFixture()
	u := f.addUser(t, "alice", "alice", "oldpw")

	err := f.svc.PasswordReset(context.Background(), PasswordResetRequest{
		Email:             u.Email,
		Username:          u.Username,
		NewPassword:       "newpw123",
		VerificationToken: "wrong",
	})
	requireCode(t, err, CodeVerificationRequired)
}

// ---- oauth2 ---------------------------------------------------------------

func TestFindOrCreateOAuth2UserIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.FindOrCreateOAuth2User(ctx, "google_sub123", "https://img.textok.store/p.png")
	require.NoError(t, err)
	require.False(t, first.Completed())
	require.Equal(t, token.RoleUser, first.Role)

	second, err := f.svc.FindOrCreateOAuth2User(ctx, "google_sub123", "https://img.textok.store/p.png")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, f.users.users, 1)
}

func TestCompleteOAuth2Join(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	placeholder, err := f.svc.FindOrCreateOAuth2User(ctx, "google_sub123", "")
	require.NoError(t, err)

	tmp, err := f.codec.IssueTemporaryToken(placeholder.ID)
	require.NoError(t, err)

	u, err := f.svc.CompleteOAuth2Join(ctx, CompleteOAuth2JoinRequest{
		TemporaryToken: tmp,
		Nickname:       "finally",
		Gender:         "F",
	})
	require.NoError(t, err)
	require.True(t, u.Completed())
	require.Equal(t, "finally", u.Nickname)
}

func TestCompleteOAuth2JoinExpiredToken(t *testing.T) {
	f := newFixture()

	expired := token.NewCodec("service-test-secret", -2*time.Minute, 24*time.Hour)
	tmp, err := expired.IssueAccessToken(1, token.RoleUser)
	require.NoError(t, err)

	_, err = f.svc.CompleteOAuth2Join(context.Background(), CompleteOAuth2JoinRequest{
		TemporaryToken: tmp,
		Nickname:       "late",
	})
	requireCode(t, err, CodeVerificationRequired)
}

func TestCompleteOAuth2JoinDuplicateNickname(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser(t, "other", "wanted", "pw")

	placeholder, err := f.svc.FindOrCreateOAuth2User(ctx, "google_sub123", "")
	require.NoError(t, err)
	tmp, err := f.codec.IssueTemporaryToken(placeholder.ID)
	require.NoError(t, err)

	_, err = f.svc.CompleteOAuth2Join(ctx, CompleteOAuth2JoinRequest{
		TemporaryToken: tmp,
		Nickname:       "wanted",
	})
	requireCode(t, err, CodeDuplicateNickname)
}

// ---- hard delete ----------------------------------------------------------

func TestHardDeleteOrdering(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser(t, "alice", "alice", "pw")
	u.ProfileImgURL = "https://img.textok.store/alice.png"
	f.content.ttsURLs = []string{"https://tts.textok.store/a.mp3"}
	f.content.shorlogIDs = []int64{10}
	f.content.blogIDs = []int64{20}

	require.NoError(t, f.svc.HardDelete(ctx, u.ID))

	require.Equal(t, []string{
		fmt.Sprintf("session:%d", u.ID),
		"image:https://img.textok.store/alice.png",
		"tts:https://tts.textok.store/a.mp3",
		"event:shorlog_deleted:10",
		"event:blog_deleted:20",
		fmt.Sprintf("rows:%d", u.ID),
	}, f.log)

	// Every event carries its own id.
	require.Len(t, f.publisher.published, 2)
	require.NotEmpty(t, f.publisher.published[0].ID)
	require.NotEqual(t, f.publisher.published[0].ID, f.publisher.published[1].ID)
}

func TestHardDeleteAbortsOnImageFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser(t, "alice", "alice", "pw")
	u.ProfileImgURL = "https://img.textok.store/alice.png"
	f.storage.failFile = errors.New("bucket unavailable")

	err := f.svc.HardDelete(ctx, u.ID)
	requireCode(t, err, CodeImageDeleteFailed)

	// The account row survives; nothing downstream ran.
	for _, entry := range f.log {
		require.NotContains(t, entry, "rows:")
		require.NotContains(t, entry, "event:")
	}
	require.Contains(t, f.users.users, u.ID)
}

func TestHardDeleteTTSFailuresAreNotFatal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser(t, "alice", "alice", "pw")
	f.content.ttsURLs = []string{
		"https://tts.textok.store/a.mp3",
		"https://tts.textok.store/b.mp3",
		"", // shorlog without audio
	}
	f.storage.failTTS = map[string]error{
		"https://tts.textok.store/a.mp3": errors.New("not found"),
	}

	require.NoError(t, f.svc.HardDelete(ctx, u.ID))
	require.Contains(t, f.log, fmt.Sprintf("rows:%d", u.ID))
	require.Contains(t, f.log, "tts:https://tts.textok.store/a.mp3")
	require.Contains(t, f.log, "tts:https://tts.textok.store/b.mp3")
	// The empty URL is skipped, not attempted.
	require.NotContains(t, f.log, "tts:")
}

func TestHardDeleteRetriesAfterRowFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.addUser(t, "alice", "alice", "pw")
	f.content.shorlogIDs = []int64{10}

	f.deletion.fail = errors.New("db down")
	require.Error(t, f.svc.HardDelete(ctx, u.ID))
	require.Contains(t, f.users.users, u.ID)

	// Second attempt completes; the duplicate event is tolerated.
	f.deletion.fail = nil
	require.NoError(t, f.svc.HardDelete(ctx, u.ID))
	require.Len(t, f.publisher.published, 2)
}

func TestHardDeleteUnknownUser(t *testing.T) {
	f := newFixture()

	err := f.svc.HardDelete(context.Background(), 404)
	requireCode(t, err, CodeUserNotFound)
}
