package domain

import "fmt"

// AuthMode selects which of the two auth forms is shown.
type AuthMode string

const (
	AuthModeLogin  AuthMode = "login"
	AuthModeSignup AuthMode = "signup"
)

// ParseAuthMode converts user input into an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case AuthModeLogin, AuthModeSignup:
		return AuthMode(s), nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

// SocialProvider names a third-party sign-in option offered under the forms.
type SocialProvider string

const (
	ProviderGoogle SocialProvider = "google"
	ProviderGitHub SocialProvider = "github"
)

// ParseSocialProvider converts user input into a SocialProvider.
func ParseSocialProvider(s string) (SocialProvider, error) {
	switch SocialProvider(s) {
	case ProviderGoogle, ProviderGitHub:
		return SocialProvider(s), nil
	default:
		return "", fmt.Errorf("unknown sign-in provider %q", s)
	}
}

// LoginCredentials is the validated shape handed to the login stub.
type LoginCredentials struct {
	Email    string `form:"email" json:"email" validate:"email" label:"Email"`
	Password string `form:"password" json:"password" validate:"min=6" label:"Password"`
}

// SignupCredentials is the validated shape handed to the signup stub.
type SignupCredentials struct {
	Name            string `form:"name" json:"name" validate:"min=2" label:"Name"`
	Email           string `form:"email" json:"email" validate:"email" label:"Email"`
	Password        string `form:"password" json:"password" validate:"min=6" label:"Password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"eqfield=Password" label:"Passwords"`
}

// LoginForm is what the login form keeps between renders. Passwords are never kept.
type LoginForm struct {
	Email     string            `json:"email"`
	Errors    map[string]string `json:"errors,omitempty"`
	Submitted bool              `json:"submitted"`
}

// SignupForm is what the signup form keeps between renders.
type SignupForm struct {
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Errors    map[string]string `json:"errors,omitempty"`
	Submitted bool              `json:"submitted"`
}

// AuthView is the state of one mounted auth page.
type AuthView struct {
	ID      string     `json:"id"`
	Mode    AuthMode   `json:"mode"`
	Loading bool       `json:"loading"`
	Login   LoginForm  `json:"login"`
	Signup  SignupForm `json:"signup"`
}

// NewAuthView mounts an auth view showing the login form.
func NewAuthView(id string) AuthView {
	return AuthView{ID: id, Mode: AuthModeLogin}
}

// SetMode switches forms. Both forms start over so nothing leaks between modes.
func (v AuthView) SetMode(mode AuthMode) AuthView {
	if mode == v.Mode {
		return v
	}
	return AuthView{ID: v.ID, Mode: mode, Loading: v.Loading}
}

// BeginSubmit marks the view as loading. It reports false if a submission is already running.
func (v AuthView) BeginSubmit() (AuthView, bool) {
	if v.Loading {
		return v, false
	}
	v.Loading = true
	return v, true
}

// EndSubmit clears the loading flag.
func (v AuthView) EndSubmit() AuthView {
	v.Loading = false
	return v
}

// RejectLogin records validation errors for the login form.
func (v AuthView) RejectLogin(email string, errs map[string]string) AuthView {
	v.Login = LoginForm{Email: email, Errors: copyErrors(errs)}
	return v
}

// AcceptLogin records a successful login submission. It is dropped when the view
// has switched to signup while the submission ran.
func (v AuthView) AcceptLogin(creds LoginCredentials) AuthView {
	if v.Mode != AuthModeLogin {
		return v
	}
	v.Login = LoginForm{Email: creds.Email, Submitted: true}
	return v
}

// RejectSignup records validation errors for the signup form.
func (v AuthView) RejectSignup(name, email string, errs map[string]string) AuthView {
	v.Signup = SignupForm{Name: name, Email: email, Errors: copyErrors(errs)}
	return v
}

// AcceptSignup records a successful signup submission, unless the view left signup mode.
func (v AuthView) AcceptSignup(creds SignupCredentials) AuthView {
	if v.Mode != AuthModeSignup {
		return v
	}
	v.Signup = SignupForm{Name: creds.Name, Email: creds.Email, Submitted: true}
	return v
}

func copyErrors(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for k, msg := range errs {
		out[k] = msg
	}
	return out
}
