package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"javinity/internal/domain"
	"javinity/internal/repository"
	"javinity/internal/validation"
)

// AuthService manages auth view instances and the login/signup submissions.
type AuthService interface {
	Mount(ctx context.Context, sessionID string) (*domain.AuthView, error)
	Get(ctx context.Context, sessionID, viewID string) (*domain.AuthView, error)
	SetMode(ctx context.Context, sessionID, viewID string, mode domain.AuthMode) (*domain.AuthView, error)
	// Login validates creds against the view's login form and, when valid, runs the stub.
	// Validation failures are recorded on the returned view, not returned as errors.
	Login(ctx context.Context, sessionID, viewID string, creds domain.LoginCredentials) (*domain.AuthView, error)
	Signup(ctx context.Context, sessionID, viewID string, creds domain.SignupCredentials) (*domain.AuthView, error)
	// SubmitLogin validates and submits without any view state.
	SubmitLogin(creds domain.LoginCredentials) validation.FieldErrors
	SubmitSignup(creds domain.SignupCredentials) validation.FieldErrors
	// ContinueWith hands a third-party sign-in click to the stub.
	ContinueWith(provider domain.SocialProvider)
}

type authService struct {
	store     viewStore
	validator *validation.Validator
	submitter Submitter
	newID     func() string

	mu sync.Mutex
}

func NewAuthService(views repository.ViewRepository, validator *validation.Validator, submitter Submitter) AuthService {
	return &authService{
		store:     viewStore{repo: views, now: time.Now},
		validator: validator,
		submitter: submitter,
		newID:     uuid.NewString,
	}
}

func (s *authService) Mount(ctx context.Context, sessionID string) (*domain.AuthView, error) {
	view := domain.NewAuthView(s.newID())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.save(ctx, sessionID, domain.ViewKindAuth, view.ID, view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *authService) Get(ctx context.Context, sessionID, viewID string) (*domain.AuthView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view domain.AuthView
	if err := s.store.load(ctx, sessionID, domain.ViewKindAuth, viewID, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *authService) SetMode(ctx context.Context, sessionID, viewID string, mode domain.AuthMode) (*domain.AuthView, error) {
	return s.update(ctx, sessionID, viewID, func(v domain.AuthView) (domain.AuthView, error) {
		return v.SetMode(mode), nil
	})
}

func (s *authService) Login(ctx context.Context, sessionID, viewID string, creds domain.LoginCredentials) (*domain.AuthView, error) {
	if errs := s.validator.Struct(creds); errs != nil {
		return s.update(ctx, sessionID, viewID, func(v domain.AuthView) (domain.AuthView, error) {
			return v.RejectLogin(creds.Email, errs), nil
		})
	}

	if _, err := s.update(ctx, sessionID, viewID, beginSubmit); err != nil {
		return nil, err
	}
	s.submitter.SubmitLogin(creds)

	return s.update(ctx, sessionID, viewID, func(v domain.AuthView) (domain.AuthView, error) {
		return v.EndSubmit().AcceptLogin(creds), nil
	})
}

func (s *authService) Signup(ctx context.Context, sessionID, viewID string, creds domain.SignupCredentials) (*domain.AuthView, error) {
	if errs := s.validator.Struct(creds); errs != nil {
		return s.update(ctx, sessionID, viewID, func(v domain.AuthView) (domain.AuthView, error) {
			return v.RejectSignup(creds.Name, creds.Email, errs), nil
		})
	}

	if _, err := s.update(ctx, sessionID, viewID, beginSubmit); err != nil {
		return nil, err
	}
	s.submitter.SubmitSignup(creds)

	return s.update(ctx, sessionID, viewID, func(v domain.AuthView) (domain.AuthView, error) {
		return v.EndSubmit().AcceptSignup(creds), nil
	})
}

func (s *authService) SubmitLogin(creds domain.LoginCredentials) validation.FieldErrors {
	if errs := s.validator.Struct(creds); errs != nil {
		return errs
	}
	s.submitter.SubmitLogin(creds)
	return nil
}

func (s *authService) SubmitSignup(creds domain.SignupCredentials) validation.FieldErrors {
	if errs := s.validator.Struct(creds); errs != nil {
		return errs
	}
	s.submitter.SubmitSignup(creds)
	return nil
}

func (s *authService) ContinueWith(provider domain.SocialProvider) {
	s.submitter.ContinueWith(provider)
}

func beginSubmit(v domain.AuthView) (domain.AuthView, error) {
	next, ok := v.BeginSubmit()
	if !ok {
		return v, ErrSubmitInProgress
	}
	return next, nil
}

func (s *authService) update(ctx context.Context, sessionID, viewID string, fn func(domain.AuthView) (domain.AuthView, error)) (*domain.AuthView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view domain.AuthView
	if err := s.store.load(ctx, sessionID, domain.ViewKindAuth, viewID, &view); err != nil {
		return nil, err
	}
	next, err := fn(view)
	if err != nil {
		return nil, err
	}
	if err := s.store.save(ctx, sessionID, domain.ViewKindAuth, next.ID, next); err != nil {
		return nil, err
	}
	return &next, nil
}
