// Package relay serves the user.* stage topics. Each handler is a pure
// request/response function around the portal client: no memory between
// invocations, every piece of session state rides in the payload, so any
// worker instance can take any stage of any attempt.
package relay

import (
	"context"
	"log/slog"

	"trinity/internal/bus"
	"trinity/internal/portal"
)

// Stage topics. The gateway issues one correlated call per stage.
const (
	TopicLoginForm = "user.loginForm"
	TopicAuth      = "user.auth"
	TopicLogin     = "user.login"
	TopicLogout    = "user.logout"
	TopicUserInfo  = "user.userInfo"
)

// Topics lists every topic this worker consumes, for provisioning.
func Topics() []string {
	return []string{TopicLoginForm, TopicAuth, TopicLogin, TopicLogout, TopicUserInfo}
}

// AckResult is the reply for stages that produce no artifact.
type AckResult struct {
	Success bool `json:"success"`
}

// Worker binds the portal stages to bus topics.
type Worker struct {
	portal *portal.Client
	logger *slog.Logger
}

func NewWorker(client *portal.Client, logger *slog.Logger) *Worker {
	return &Worker{portal: client, logger: logger}
}

// Register wires the stage handlers onto the responder.
func (w *Worker) Register(r *bus.Responder) {
	r.Handle(TopicLoginForm, bus.JSONHandler(w.loginForm))
	r.Handle(TopicAuth, bus.JSONHandler(w.auth))
	r.Handle(TopicLogin, bus.JSONHandler(w.login))
	r.Handle(TopicLogout, bus.JSONHandler(w.logout))
	r.Handle(TopicUserInfo, bus.JSONHandler(w.userInfo))
}

func (w *Worker) loginForm(ctx context.Context, _ struct{}) (any, error) {
	return w.portal.LoginForm(ctx)
}

func (w *Worker) auth(ctx context.Context, in portal.AuthRequest) (any, error) {
	return w.portal.Authenticate(ctx, in)
}

func (w *Worker) login(ctx context.Context, in portal.SessionRequest) (any, error) {
	res, err := w.portal.EstablishSession(ctx, in)
	if err != nil {
		return nil, err
	}
	w.logger.InfoContext(ctx, "portal session established")
	return res, nil
}

func (w *Worker) logout(ctx context.Context, in portal.LogoutRequest) (any, error) {
	if err := w.portal.Logout(ctx, in); err != nil {
		return nil, err
	}
	return AckResult{Success: true}, nil
}

func (w *Worker) userInfo(ctx context.Context, in portal.UserInfoRequest) (any, error) {
	return w.portal.UserInfo(ctx, in)
}
