package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"javinity/internal/domain"
)

// DefaultSubmitDelay is how long the auth stub pretends to talk to a backend.
const DefaultSubmitDelay = time.Second

// Submitter receives validated auth forms. There is no backend behind it: the stub
// logs the submission, waits, and always succeeds.
type Submitter interface {
	SubmitLogin(creds domain.LoginCredentials)
	SubmitSignup(creds domain.SignupCredentials)
	// ContinueWith records a third-party sign-in click. It does not wait.
	ContinueWith(provider domain.SocialProvider)
}

type stubSubmitter struct {
	delay  time.Duration
	logger *logrus.Logger
	sleep  func(time.Duration)
}

// NewStubSubmitter returns a Submitter that waits out delay on every call.
// The wait cannot be cancelled.
func NewStubSubmitter(delay time.Duration, logger *logrus.Logger) Submitter {
	if delay < 0 {
		delay = DefaultSubmitDelay
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &stubSubmitter{delay: delay, logger: logger, sleep: time.Sleep}
}

func (s *stubSubmitter) SubmitLogin(creds domain.LoginCredentials) {
	s.logger.WithFields(logrus.Fields{
		"email":    creds.Email,
		"password": redact(creds.Password),
	}).Info("login submitted")
	s.sleep(s.delay)
}

func (s *stubSubmitter) SubmitSignup(creds domain.SignupCredentials) {
	s.logger.WithFields(logrus.Fields{
		"name":     creds.Name,
		"email":    creds.Email,
		"password": redact(creds.Password),
	}).Info("signup submitted")
	s.sleep(s.delay)
}

func (s *stubSubmitter) ContinueWith(provider domain.SocialProvider) {
	s.logger.WithField("provider", provider).Info("continue with provider")
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted]"
}
