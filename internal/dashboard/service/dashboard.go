package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/domain"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/metrics"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

// Result is the outcome of a dashboard load. View is only meaningful when
// the action is ActionRenderGuest or ActionFetchAndRender.
type Result struct {
	Decision
	View domain.ViewModel
}

// DashboardService runs the full page load: guard, dashboard fetch, compose.
type DashboardService struct {
	Guard *Guard
}

// Load resolves the session for requested and, when allowed, fetches and
// composes the role dashboard. The dashboard request is only sent after the
// profile check has passed.
func (s *DashboardService) Load(ctx context.Context, requested domain.Role, creds Credentials) (Result, error) {
	log := slogx.FromContext(ctx).With(slog.String("requested_role", requested.String()))

	decision, err := s.Guard.Resolve(ctx, requested, creds)
	if err != nil {
		metrics.DashboardLoadsTotal.WithLabelValues(requested.String(), "error").Inc()
		return Result{}, err
	}

	switch decision.Action {
	case ActionRenderGuest:
		metrics.DashboardLoadsTotal.WithLabelValues(requested.String(), "rendered").Inc()
		return Result{Decision: decision, View: GuestView()}, nil
	case ActionFetchAndRender:
	default:
		metrics.DashboardLoadsTotal.WithLabelValues(requested.String(), outcomeOf(decision.Action)).Inc()
		log.Debug("dashboard not rendered", slog.String("action", decision.Action.String()))
		return Result{Decision: decision}, nil
	}

	token, ok, err := creds.Token(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		// Cleared by a concurrent logout between the two requests.
		metrics.DashboardLoadsTotal.WithLabelValues(requested.String(), "login").Inc()
		return Result{Decision: Decision{Action: ActionRedirectLogin}}, nil
	}

	dash, err := s.Guard.Client.NewSession(token).Dashboard(ctx, decision.Role.String())
	if err != nil {
		failed, ferr := s.Guard.fail(ctx, err, creds, MsgDashboardUnavailable)
		if ferr != nil {
			metrics.DashboardLoadsTotal.WithLabelValues(requested.String(), "error").Inc()
			return Result{}, ferr
		}
		metrics.DashboardLoadsTotal.WithLabelValues(requested.String(), outcomeOf(failed.Action)).Inc()
		return Result{Decision: failed}, nil
	}

	metrics.DashboardLoadsTotal.WithLabelValues(requested.String(), "rendered").Inc()
	log.Debug("dashboard rendered", slog.String("role", decision.Role.String()))

	return Result{
		Decision: decision,
		View:     Compose(decision.Profile, dash, decision.Role),
	}, nil
}

// Detect picks the dashboard for a browser hitting /dashboard without a
// role. A profile without a role lands on the member dashboard.
func (s *DashboardService) Detect(ctx context.Context, creds Credentials) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	token, ok, err := creds.Token(ctx)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return s.Guard.decide(ctx, Decision{Action: ActionRedirectLogin}), nil
	}

	profile, err := s.Guard.Client.NewSession(token).Me(ctx)
	if err != nil {
		return s.Guard.fail(ctx, err, creds, MsgProfileUnavailable)
	}

	role := domain.ParseRouteRole(stringOr(profile.Role, string(domain.RoleMember)))
	return s.Guard.decide(ctx, Decision{Action: ActionRedirectToRole, Role: role}), nil
}

func outcomeOf(a Action) string {
	switch a {
	case ActionRedirectToRole:
		return "redirected"
	case ActionRedirectLogin:
		return "login"
	case ActionRenderError:
		return "error"
	default:
		return "rendered"
	}
}
