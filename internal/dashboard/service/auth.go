package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/metrics"
	"github.com/aussiebroadwan/cinedash/pkg/cryptox"
	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

// Messages shown by the login page.
const (
	MsgLoginFailed  = "Could not log in right now. Please check your details and try again."
	MsgNetworkError = "Network error. Please try again."
)

// LoginForm is the login page submission. Username may also be an email.
// Password rules belong to the catalog API, only presence is checked here.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// LoginReason classifies a failed login.
type LoginReason int

const (
	// LoginInvalid means the form failed validation and no request was sent.
	LoginInvalid LoginReason = iota + 1
	// LoginRejected means the catalog API refused the credentials.
	LoginRejected
	// LoginUnreachable means the catalog API could not be reached.
	LoginUnreachable
)

// LoginError is returned by AuthService.Login. Message is safe to show to
// the user.
type LoginError struct {
	Reason  LoginReason
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed: %s: %v", e.Message, e.Err)
	}
	return "login failed: " + e.Message
}

func (e *LoginError) Unwrap() error { return e.Err }

// AuthService logs browsers in and out of the catalog API.
type AuthService struct {
	Client    *moviesdk.Client
	Validator *validator.Validate
}

// NewAuthService returns an AuthService with its own validator.
func NewAuthService(client *moviesdk.Client) *AuthService {
	return &AuthService{Client: client, Validator: validator.New()}
}

// Login validates form, exchanges it for a bearer token and stores the
// token in creds. An API response without a token is still a successful
// login; the next dashboard load will send the browser back to login.
func (s *AuthService) Login(ctx context.Context, form LoginForm, creds Credentials) error {
	log := slogx.FromContext(ctx)

	if err := s.validate(form); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	tok, err := s.Client.Login(ctx, form.Username, form.Password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if moviesdk.KindOf(err) == moviesdk.KindNetwork {
			metrics.LoginAttemptsTotal.WithLabelValues("network").Inc()
			log.Warn("login request failed", slog.Any("error", err))
			return &LoginError{Reason: LoginUnreachable, Message: MsgNetworkError, Err: err}
		}
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		log.Info("login rejected", slog.String("username", form.Username), slog.Any("error", err))
		return &LoginError{Reason: LoginRejected, Message: moviesdk.MessageOf(err, MsgLoginFailed), Err: err}
	}

	if tok.AccessToken != "" {
		if err := creds.SetToken(ctx, tok.AccessToken); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	log.Info("login succeeded",
		slog.String("username", form.Username),
		slog.String("token_fp", cryptox.FingerprintToken(tok.AccessToken)),
	)
	return nil
}

// Logout tells the API to revoke the token and clears it locally. The API
// call is best effort; its failure never keeps the browser logged in.
func (s *AuthService) Logout(ctx context.Context, creds Credentials) error {
	token, ok, err := creds.Token(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("could not read token during logout", slog.Any("error", err))
	}

	if ok {
		if err := s.Client.NewSession(token).Logout(ctx); err != nil {
			slogx.FromContext(ctx).Debug("remote logout failed",
				slog.String("token_fp", cryptox.FingerprintToken(token)),
				slog.Any("error", err),
			)
		}
	}

	return creds.ClearToken(context.WithoutCancel(ctx))
}

func (s *AuthService) validate(form LoginForm) error {
	v := s.Validator
	if v == nil {
		v = validator.New()
	}

	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return &LoginError{Reason: LoginInvalid, Message: strings.Join(msgs, " ")}
}

// fieldError converts a single validation failure into a readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please enter your %s.", field)
	default:
		return fmt.Sprintf("The %s is not valid.", field)
	}
}
