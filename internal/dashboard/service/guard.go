package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/domain"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/metrics"
	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

// Action is what a page should do after the session guard has run.
type Action int

const (
	// ActionRenderGuest renders the guest dashboard without any API call.
	ActionRenderGuest Action = iota + 1
	// ActionFetchAndRender fetches the role dashboard and renders it.
	ActionFetchAndRender
	// ActionRedirectLogin sends the browser to the login page.
	ActionRedirectLogin
	// ActionRedirectToRole sends the browser to the dashboard of Decision.Role.
	ActionRedirectToRole
	// ActionRenderError shows Decision.Message and keeps the session. Only
	// reachable through a FailurePolicy that returns KeepSession.
	ActionRenderError
)

func (a Action) String() string {
	switch a {
	case ActionRenderGuest:
		return "render_guest"
	case ActionFetchAndRender:
		return "fetch_and_render"
	case ActionRedirectLogin:
		return "redirect_login"
	case ActionRedirectToRole:
		return "redirect_to_role"
	case ActionRenderError:
		return "render_error"
	default:
		return "unknown"
	}
}

// Messages shown when the catalog API gave no message of its own.
const (
	MsgProfileUnavailable   = "Could not load your profile right now."
	MsgDashboardUnavailable = "Could not load your dashboard right now."
)

// Decision is the outcome of a session guard check.
type Decision struct {
	Action Action

	// Role is the role to render for ActionFetchAndRender and
	// ActionRenderGuest, and the redirect target for ActionRedirectToRole.
	Role domain.Role

	// Message is set when the session was torn down or an error is shown.
	Message string

	// Profile is the /auth/me payload, set for ActionFetchAndRender.
	Profile *moviesdk.Profile
}

// FailureOutcome is what a FailurePolicy decides for a failed API call.
type FailureOutcome int

const (
	ForceLogout FailureOutcome = iota
	KeepSession
)

// FailurePolicy maps the kind of a failed catalog call onto its effect on
// the session.
type FailurePolicy func(kind moviesdk.ErrorKind) FailureOutcome

// StrictPolicy logs the browser out on every failure.
func StrictPolicy(moviesdk.ErrorKind) FailureOutcome { return ForceLogout }

// LenientPolicy keeps the session when the API could not be reached at all
// and logs out on everything else.
func LenientPolicy(kind moviesdk.ErrorKind) FailureOutcome {
	if kind == moviesdk.KindNetwork {
		return KeepSession
	}
	return ForceLogout
}

// Precheck is the part of the guard that needs no network call. It returns
// ActionFetchAndRender when the profile has to be fetched to decide.
func Precheck(requested domain.Role, hasToken bool) Action {
	switch {
	case requested == domain.RoleGuest:
		return ActionRenderGuest
	case !hasToken:
		return ActionRedirectLogin
	default:
		return ActionFetchAndRender
	}
}

// Guard decides whether a browser may see the dashboard it asked for.
type Guard struct {
	Client *moviesdk.Client

	// Policy defaults to StrictPolicy.
	Policy FailurePolicy
}

// Resolve runs the session guard for requested. If ctx is cancelled before
// a decision is reached ctx.Err() is returned and creds are left alone.
func (g *Guard) Resolve(ctx context.Context, requested domain.Role, creds Credentials) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	if requested == domain.RoleGuest {
		return g.decide(ctx, Decision{Action: ActionRenderGuest, Role: domain.RoleGuest}), nil
	}

	token, ok, err := creds.Token(ctx)
	if err != nil {
		return Decision{}, err
	}
	if Precheck(requested, ok) == ActionRedirectLogin {
		return g.decide(ctx, Decision{Action: ActionRedirectLogin}), nil
	}

	profile, err := g.Client.NewSession(token).Me(ctx)
	if err != nil {
		return g.fail(ctx, err, creds, MsgProfileUnavailable)
	}

	current := domain.Normalize(stringOr(profile.Role, string(requested)))
	if !current.Valid() {
		err := &moviesdk.APIError{
			Kind:       moviesdk.KindMalformed,
			StatusCode: 200,
			Err:        fmt.Errorf("unknown profile role %q", current),
		}
		return g.fail(ctx, err, creds, MsgProfileUnavailable)
	}

	target := domain.Normalize(string(requested))
	if current != target {
		return g.decide(ctx, Decision{Action: ActionRedirectToRole, Role: current}), nil
	}

	return g.decide(ctx, Decision{Action: ActionFetchAndRender, Role: target, Profile: profile}), nil
}

// fail applies the failure policy to err. The token is removed before the
// redirect decision is returned.
func (g *Guard) fail(ctx context.Context, err error, creds Credentials, fallback string) (Decision, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Decision{}, ctxErr
	}

	log := slogx.FromContext(ctx)
	kind := moviesdk.KindOf(err)
	msg := moviesdk.MessageOf(err, fallback)

	if g.policy()(kind) == KeepSession {
		log.Warn("catalog call failed, keeping session", slog.String("kind", kind.String()), slog.Any("error", err))
		return g.decide(ctx, Decision{Action: ActionRenderError, Message: msg}), nil
	}

	log.Info("catalog call failed, logging out", slog.String("kind", kind.String()), slog.Any("error", err))
	if err := creds.ClearToken(ctx); err != nil {
		return Decision{}, err
	}
	return g.decide(ctx, Decision{Action: ActionRedirectLogin, Message: msg}), nil
}

func (g *Guard) policy() FailurePolicy {
	if g.Policy == nil {
		return StrictPolicy
	}
	return g.Policy
}

func (g *Guard) decide(ctx context.Context, d Decision) Decision {
	metrics.GuardDecisionsTotal.WithLabelValues(d.Action.String()).Inc()
	slogx.FromContext(ctx).Debug("guard decision",
		slog.String("action", d.Action.String()),
		slog.String("role", d.Role.String()),
	)
	return d
}

// stringOr dereferences s, falling back to def when s is nil or empty.
func stringOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
