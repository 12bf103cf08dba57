package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/staffdesk/hrbot/internal/config"
	"github.com/staffdesk/hrbot/internal/otp"
	"github.com/staffdesk/hrbot/internal/phone"
	"github.com/staffdesk/hrbot/internal/store"
)

// Service owns the volatile verification sessions, at most one per user.
// Transitions for a single user are serialized on the session mutex while
// different users proceed in parallel. Phone attempts are deliberately
// unlimited while OTP attempts are capped; confirm with the product owner
// before tightening.
type Service struct {
	users    UserStore
	profiles ProfileSource
	sender   CodeSender
	cfg      config.OTPConfig
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewService(log *slog.Logger, cfg config.OTPConfig, users UserStore, profiles ProfileSource, sender CodeSender) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		users:    users,
		profiles: profiles,
		sender:   sender,
		cfg:      cfg,
		logger:   log.With(slog.String("service", "verify")),
		now:      time.Now,
		sessions: map[int64]*session{},
	}
}

func (s *Service) ttl() time.Duration {
	return time.Duration(s.cfg.TTLMin) * time.Minute
}

// Active reports whether the user has a verification session in flight.
func (s *Service) Active(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	return ok
}

// Start begins (or restarts) verification for the user. A prior session is
// discarded. When no login is bound the caller must collect one first.
func (s *Service) Start(ctx context.Context, userID int64, locale string) (Outcome, error) {
	login, err := s.users.Login(ctx, userID)
	if err != nil {
		return OutcomeNone, err
	}
	if login == "" {
		return OutcomePromptLogin, nil
	}
	profile, err := s.profiles.ByLogin(ctx, login)
	if errors.Is(err, store.ErrProfileNotFound) {
		return OutcomeProfileMissing, nil
	}
	if err != nil {
		return OutcomeNone, err
	}

	s.mu.Lock()
	s.sessions[userID] = &session{
		step:          StepPhone,
		locale:        locale,
		expectedPhone: profile.Phone,
	}
	s.mu.Unlock()
	s.logger.Info("verification started", slog.Int64("user_id", userID))
	return OutcomePromptPhone, nil
}

// SubmitLogin binds a candidate login to the user. Binding clears the
// persisted verified flag before the new verification starts.
func (s *Service) SubmitLogin(ctx context.Context, userID int64, locale, candidate string) (Outcome, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return OutcomeLoginNotFound, nil
	}
	if _, err := s.profiles.ByLogin(ctx, candidate); err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return OutcomeLoginNotFound, nil
		}
		return OutcomeNone, err
	}
	if err := s.users.SetLogin(ctx, userID, candidate); err != nil {
		return OutcomeNone, err
	}
	return s.Start(ctx, userID, locale)
}

// Submit feeds user text into the active session and advances it.
func (s *Service) Submit(ctx context.Context, userID int64, text string) (Outcome, error) {
	s.mu.Lock()
	sess := s.sessions[userID]
	s.mu.Unlock()
	if sess == nil {
		return OutcomeNone, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	text = strings.TrimSpace(text)

	switch sess.step {
	case StepPhone:
		return s.submitPhone(sess, text)
	case StepEmail:
		return s.submitEmail(ctx, sess, text)
	case StepOTP:
		return s.submitCode(ctx, userID, sess, text)
	default:
		return OutcomeNone, fmt.Errorf("unknown verification step %d", sess.step)
	}
}

func (s *Service) submitPhone(sess *session, text string) (Outcome, error) {
	if !phone.Matches(s.logger, text, sess.expectedPhone) {
		return OutcomePhoneMismatch, nil
	}
	sess.step = StepEmail
	return OutcomePromptEmail, nil
}

func (s *Service) submitEmail(ctx context.Context, sess *session, text string) (Outcome, error) {
	email := strings.ToLower(text)
	if email == "" || !strings.Contains(email, "@") {
		return OutcomeInvalidEmail, nil
	}
	code, err := otp.Generate(s.cfg.Length)
	if err != nil {
		return OutcomeNone, err
	}
	if err := s.sender.Deliver(ctx, email, sess.locale, code, s.ttl()); err != nil {
		s.logger.Error("otp delivery failed", slog.String("email", email), slog.Any("error", err))
		return OutcomeSendFailed, nil
	}
	sess.email = email
	sess.code = code
	sess.issuedAt = s.now()
	sess.attempts = 0
	sess.resends = 0
	sess.step = StepOTP
	s.logger.Info("otp sent", slog.String("email", email))
	return OutcomeCodeSent, nil
}

func (s *Service) submitCode(ctx context.Context, userID int64, sess *session, text string) (Outcome, error) {
	sess.attempts++
	if sess.attempts > s.cfg.AttemptsMax {
		s.discard(userID)
		s.logger.Warn("otp attempts exhausted", slog.Int64("user_id", userID))
		return OutcomeAborted, nil
	}
	switch otp.Validate(text, sess.code, sess.issuedAt, s.now(), s.ttl()) {
	case otp.ResultOK:
		if err := s.users.SetVerified(ctx, userID, true); err != nil {
			return OutcomeNone, err
		}
		s.discard(userID)
		s.logger.Info("user verified", slog.Int64("user_id", userID))
		return OutcomeVerified, nil
	case otp.ResultExpired:
		return OutcomeCodeExpired, nil
	default:
		return OutcomeCodeMismatch, nil
	}
}

// Resend issues a fresh code to the already collected email. Attempts are
// kept; only the resend counter advances.
func (s *Service) Resend(ctx context.Context, userID int64) (Outcome, error) {
	s.mu.Lock()
	sess := s.sessions[userID]
	s.mu.Unlock()
	if sess == nil {
		return OutcomeNone, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.step != StepOTP || sess.email == "" {
		return OutcomeNone, nil
	}
	if sess.resends >= s.cfg.ResendMax {
		return OutcomeResendLimit, nil
	}
	code, err := otp.Generate(s.cfg.Length)
	if err != nil {
		return OutcomeNone, err
	}
	sess.code = code
	sess.issuedAt = s.now()
	sess.resends++
	if err := s.sender.Deliver(ctx, sess.email, sess.locale, code, s.ttl()); err != nil {
		s.logger.Error("otp resend failed", slog.String("email", sess.email), slog.Any("error", err))
		return OutcomeSendFailed, nil
	}
	return OutcomeResent, nil
}

// Cancel discards the session, leaving persisted state untouched. The
// existing login binding survives, so a fresh verification restarts at the
// phone step.
func (s *Service) Cancel(userID int64) Outcome {
	s.mu.Lock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if !ok {
		return OutcomeNone
	}
	return OutcomeCancelled
}

func (s *Service) discard(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}
