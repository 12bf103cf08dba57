// Package forms runs the in-chat step-by-step form fill flow and persists
// completed submissions.
package forms

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/staffdesk/hrbot/internal/catalog"
)

// SubmissionSink appends one completed submission.
type SubmissionSink interface {
	Insert(ctx context.Context, userID int64, username, formKey string, answers map[string]string) error
}

// fillSession is the volatile per-user fill progress. Transitions for a
// single user are serialized on the session mutex; done marks a session
// that was submitted or discarded so a late message cannot revive it.
type fillSession struct {
	mu      sync.Mutex
	formKey string
	fields  []string
	answers []string
	index   int
	done    bool
}

// Service owns at most one fill session per user.
type Service struct {
	sink   SubmissionSink
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*fillSession
}

func NewService(log *slog.Logger, sink SubmissionSink) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sink:     sink,
		logger:   log.With(slog.String("service", "forms")),
		sessions: map[int64]*fillSession{},
	}
}

// Active reports whether the user is mid-fill.
func (s *Service) Active(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	return ok
}

// Begin starts filling a form. Informational forms (no fields) have no
// fill flow and return false. A prior session is replaced.
func (s *Service) Begin(userID int64, form catalog.Form) (firstField string, ok bool) {
	if form.Informational() {
		return "", false
	}
	s.mu.Lock()
	s.sessions[userID] = &fillSession{
		formKey: form.Key,
		fields:  form.Fields,
		answers: make([]string, 0, len(form.Fields)),
	}
	s.mu.Unlock()
	return form.Fields[0], true
}

// Answer records the reply for the current field. When fields remain it
// returns the next one; otherwise the submission is persisted and the
// session ends.
func (s *Service) Answer(ctx context.Context, userID int64, username, text string) (nextField string, done bool, err error) {
	s.mu.Lock()
	sess := s.sessions[userID]
	s.mu.Unlock()
	if sess == nil {
		return "", false, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return "", false, nil
	}

	sess.answers = append(sess.answers, strings.TrimSpace(text))
	sess.index++
	if sess.index < len(sess.fields) {
		return sess.fields[sess.index], false, nil
	}

	answers := make(map[string]string, len(sess.fields))
	for i, field := range sess.fields {
		answers[field] = sess.answers[i]
	}
	if err := s.sink.Insert(ctx, userID, username, sess.formKey, answers); err != nil {
		return "", false, err
	}
	sess.done = true
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	s.logger.Info("form submitted", slog.Int64("user_id", userID), slog.String("form", sess.formKey))
	return "", true, nil
}

// Cancel discards the fill session, if any. An answer already being
// processed for the session finishes; later ones see it closed.
func (s *Service) Cancel(userID int64) bool {
	s.mu.Lock()
	sess := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if sess == nil {
		return false
	}
	sess.mu.Lock()
	sess.done = true
	sess.mu.Unlock()
	return true
}
