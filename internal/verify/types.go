// Package verify drives the per-user identity verification workflow:
// login binding, phone check, email collection, and OTP confirmation.
package verify

import (
	"context"
	"sync"
	"time"

	"github.com/staffdesk/hrbot/internal/catalog"
)

// Step is the current position in a verification session. Login binding
// happens before a session exists; a session always starts at StepPhone.
type Step int

const (
	StepPhone Step = iota
	StepEmail
	StepOTP
)

// Outcome tells the caller what happened and what to prompt next.
type Outcome int

const (
	// OutcomeNone: no active session for this user.
	OutcomeNone Outcome = iota
	// OutcomePromptLogin: no employee login bound yet; ask for one.
	OutcomePromptLogin
	// OutcomeLoginNotFound: the submitted login has no profile.
	OutcomeLoginNotFound
	// OutcomeProfileMissing: the bound login's profile disappeared.
	OutcomeProfileMissing
	// OutcomePromptPhone: session started; ask for the phone number.
	OutcomePromptPhone
	// OutcomePhoneMismatch: number does not match; ask again.
	OutcomePhoneMismatch
	// OutcomePromptEmail: phone accepted; ask for the work email.
	OutcomePromptEmail
	// OutcomeInvalidEmail: not a usable address; ask again.
	OutcomeInvalidEmail
	// OutcomeCodeSent: OTP delivered; ask for the code.
	OutcomeCodeSent
	// OutcomeSendFailed: delivery failed; state unchanged, user may retry.
	OutcomeSendFailed
	// OutcomeVerified: code accepted; session gone, flag persisted.
	OutcomeVerified
	// OutcomeCodeExpired: code stale; suggest resend.
	OutcomeCodeExpired
	// OutcomeCodeMismatch: wrong code; attempts counted.
	OutcomeCodeMismatch
	// OutcomeAborted: attempt limit exceeded; session gone, restart needed.
	OutcomeAborted
	// OutcomeResent: a fresh code was delivered.
	OutcomeResent
	// OutcomeResendLimit: resend cap reached; nothing sent.
	OutcomeResendLimit
	// OutcomeCancelled: session discarded on user request.
	OutcomeCancelled
)

// session is the ephemeral per-user verification state. It lives only in
// process memory and is lost on restart; verification restarts from the
// login step, which is idempotent.
type session struct {
	mu            sync.Mutex
	step          Step
	locale        string
	expectedPhone string
	email         string
	code          string
	issuedAt      time.Time
	attempts      int
	resends       int
}

// UserStore is the slice of the persistent user record the workflow needs.
type UserStore interface {
	Login(ctx context.Context, userID int64) (string, error)
	SetLogin(ctx context.Context, userID int64, login string) error
	SetVerified(ctx context.Context, userID int64, verified bool) error
}

// ProfileSource resolves employee profiles by login.
type ProfileSource interface {
	ByLogin(ctx context.Context, login string) (catalog.Profile, error)
}

// CodeSender delivers a one-time code to an email address.
type CodeSender interface {
	Deliver(ctx context.Context, to, locale, code string, ttl time.Duration) error
}
