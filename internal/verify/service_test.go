package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/config"
	"github.com/staffdesk/hrbot/internal/store"
)

type fakeUsers struct {
	login    map[int64]string
	verified map[int64]bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{login: map[int64]string{}, verified: map[int64]bool{}}
}

func (f *fakeUsers) Login(_ context.Context, userID int64) (string, error) {
	return f.login[userID], nil
}

func (f *fakeUsers) SetLogin(_ context.Context, userID int64, login string) error {
	f.login[userID] = login
	f.verified[userID] = false
	return nil
}

func (f *fakeUsers) SetVerified(_ context.Context, userID int64, verified bool) error {
	f.verified[userID] = verified
	return nil
}

type fakeProfiles struct {
	profiles map[string]catalog.Profile
}

func (f *fakeProfiles) ByLogin(_ context.Context, login string) (catalog.Profile, error) {
	p, ok := f.profiles[login]
	if !ok {
		return catalog.Profile{}, store.ErrProfileNotFound
	}
	return p, nil
}

type fakeSender struct {
	fail     bool
	sent     []string
	lastCode string
}

func (f *fakeSender) Deliver(_ context.Context, to, _, code string, _ time.Duration) error {
	if f.fail {
		return assert.AnError
	}
	f.sent = append(f.sent, to)
	f.lastCode = code
	return nil
}

func testConfig() config.OTPConfig {
	return config.OTPConfig{TTLMin: 10, AttemptsMax: 5, ResendMax: 3, Length: 6}
}

func newTestService(users *fakeUsers, sender *fakeSender) *Service {
	profiles := &fakeProfiles{profiles: map[string]catalog.Profile{
		"jdoe": {Login: "jdoe", Phone: "+380931234567"},
	}}
	return NewService(nil, testConfig(), users, profiles, sender)
}

const userID = int64(42)

func startAtOTP(t *testing.T, svc *Service, users *fakeUsers, sender *fakeSender) {
	t.Helper()
	users.login[userID] = "jdoe"
	ctx := context.Background()

	outcome, err := svc.Start(ctx, userID, "es")
	require.NoError(t, err)
	require.Equal(t, OutcomePromptPhone, outcome)

	outcome, err = svc.Submit(ctx, userID, "093 123 45 67")
	require.NoError(t, err)
	require.Equal(t, OutcomePromptEmail, outcome)

	outcome, err = svc.Submit(ctx, userID, "JDoe@example.com")
	require.NoError(t, err)
	require.Equal(t, OutcomeCodeSent, outcome)
	require.Equal(t, []string{"jdoe@example.com"}, sender.sent)
}

func TestHappyPath(t *testing.T) {
	users := newFakeUsers()
	sender := &fakeSender{}
	svc := newTestService(users, sender)
	startAtOTP(t, svc, users, sender)

	outcome, err := svc.Submit(context.Background(), userID, sender.lastCode)
	require.NoError(t, err)
	assert.Equal(t, OutcomeVerified, outcome)
	assert.True(t, users.verified[userID])
	assert.False(t, svc.Active(userID))
}

func TestStartWithoutLogin(t *testing.T) {
	svc := newTestService(newFakeUsers(), &fakeSender{})
	outcome, err := svc.Start(context.Background(), userID, "es")
	require.NoError(t, err)
	assert.Equal(t, OutcomePromptLogin, outcome)
	assert.False(t, svc.Active(userID))
}

func TestStartWithMissingProfile(t *testing.T) {
	users := newFakeUsers()
	users.login[userID] = "ghost"
	svc := newTestService(users, &fakeSender{})
	outcome, err := svc.Start(context.Background(), userID, "es")
	require.NoError(t, err)
	assert.Equal(t, OutcomeProfileMissing, outcome)
}

func TestSubmitLogin(t *testing.T) {
	users := newFakeUsers()
	users.verified[userID] = true
	svc := newTestService(users, &fakeSender{})
	ctx := context.Background()

	outcome, err := svc.SubmitLogin(ctx, userID, "es", "nobody")
	require.NoError(t, err)
	assert.Equal(t, OutcomeLoginNotFound, outcome)

	outcome, err = svc.SubmitLogin(ctx, userID, "es", " jdoe ")
	require.NoError(t, err)
	assert.Equal(t, OutcomePromptPhone, outcome)
	assert.Equal(t, "jdoe", users.login[userID])
	assert.False(t, users.verified[userID], "rebinding must clear the verified flag")
}

func TestPhoneMismatchKeepsSession(t *testing.T) {
	users := newFakeUsers()
	users.login[userID] = "jdoe"
	svc := newTestService(users, &fakeSender{})
	ctx := context.Background()

	_, err := svc.Start(ctx, userID, "es")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		outcome, err := svc.Submit(ctx, userID, "000000000")
		require.NoError(t, err)
		assert.Equal(t, OutcomePhoneMismatch, outcome)
	}
	outcome, err := svc.Submit(ctx, userID, "+380931234567")
	require.NoError(t, err)
	assert.Equal(t, OutcomePromptEmail, outcome)
}

func TestInvalidEmail(t *testing.T) {
	users := newFakeUsers()
	sender := &fakeSender{}
	svc := newTestService(users, sender)
	users.login[userID] = "jdoe"
	ctx := context.Background()

	_, err := svc.Start(ctx, userID, "es")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, userID, "0931234567")
	require.NoError(t, err)

	outcome, err := svc.Submit(ctx, userID, "not-an-email")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalidEmail, outcome)
	assert.Empty(t, sender.sent)
}

func TestDeliveryFailureKeepsEmailStep(t *testing.T) {
	users := newFakeUsers()
	sender := &fakeSender{fail: true}
	svc := newTestService(users, sender)
	users.login[userID] = "jdoe"
	ctx := context.Background()

	_, err := svc.Start(ctx, userID, "es")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, userID, "0931234567")
	require.NoError(t, err)

	outcome, err := svc.Submit(ctx, userID, "jdoe@example.com")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSendFailed, outcome)

	sender.fail = false
	outcome, err = svc.Submit(ctx, userID, "jdoe@example.com")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCodeSent, outcome)
}

func TestAttemptLimitAbortsSession(t *testing.T) {
	users := newFakeUsers()
	sender := &fakeSender{}
	svc := newTestService(users, sender)
	startAtOTP(t, svc, users, sender)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		outcome, err := svc.Submit(ctx, userID, "000000")
		require.NoError(t, err)
		assert.Equal(t, OutcomeCodeMismatch, outcome, "attempt %d", i+1)
	}
	outcome, err := svc.Submit(ctx, userID, "000000")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAborted, outcome)
	assert.False(t, users.verified[userID])
	assert.False(t, svc.Active(userID))
}

func TestExpiredCode(t *testing.T) {
	users := newFakeUsers()
	sender := &fakeSender{}
	svc := newTestService(users, sender)
	startAtOTP(t, svc, users, sender)

	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	outcome, err := svc.Submit(context.Background(), userID, sender.lastCode)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCodeExpired, outcome)
	assert.True(t, svc.Active(userID), "expired code keeps the session for a resend")
}

func TestResendLimitAndRotation(t *testing.T) {
	users := newFakeUsers()
	sender := &fakeSender{}
	svc := newTestService(users, sender)
	startAtOTP(t, svc, users, sender)
	ctx := context.Background()

	first := sender.lastCode
	for i := 0; i < 3; i++ {
		outcome, err := svc.Resend(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeResent, outcome, "resend %d", i+1)
	}
	outcome, err := svc.Resend(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResendLimit, outcome)

	// The first code was replaced by the rotations.
	if first != sender.lastCode {
		outcome, err = svc.Submit(ctx, userID, first)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCodeMismatch, outcome)
	}
	outcome, err = svc.Submit(ctx, userID, sender.lastCode)
	require.NoError(t, err)
	assert.Equal(t, OutcomeVerified, outcome)
}

func TestResendWithoutSession(t *testing.T) {
	svc := newTestService(newFakeUsers(), &fakeSender{})
	outcome, err := svc.Resend(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)
}

func TestCancel(t *testing.T) {
	users := newFakeUsers()
	sender := &fakeSender{}
	svc := newTestService(users, sender)
	startAtOTP(t, svc, users, sender)

	assert.Equal(t, OutcomeCancelled, svc.Cancel(userID))
	assert.Equal(t, OutcomeNone, svc.Cancel(userID))
	assert.False(t, svc.Active(userID))
}
