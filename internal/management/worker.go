package management

import (
	"context"

	"trinity/internal/bus"
)

// Worker binds the management operations to bus topics.
type Worker struct {
	service *Service
}

func NewWorker(service *Service) *Worker {
	return &Worker{service: service}
}

// Register wires all management handlers, including the fire-and-forget
// loginSuccess event.
func (w *Worker) Register(r *bus.Responder) {
	r.Handle(TopicLoginSuccess, bus.JSONHandler(w.loginSuccess))
	r.Handle(TopicGetLoginCount, bus.JSONHandler(w.loginCount))
	r.Handle(TopicLogin, bus.JSONHandler(w.login))
	r.Handle(TopicLogout, bus.JSONHandler(w.logout))
	r.Handle(TopicValidateSession, bus.JSONHandler(w.validateSession))
	r.Handle(TopicGetShtmYyyy, bus.JSONHandler(w.term))
	r.Handle(TopicSetShtmYyyy, bus.JSONHandler(w.setTerm))
}

func (w *Worker) loginSuccess(ctx context.Context, _ struct{}) (any, error) {
	return nil, w.service.RecordLoginSuccess(ctx)
}

func (w *Worker) loginCount(ctx context.Context, _ struct{}) (any, error) {
	count, err := w.service.LoginCount(ctx)
	if err != nil {
		return nil, err
	}
	return LoginCountResult{Count: count}, nil
}

func (w *Worker) login(ctx context.Context, in LoginRequest) (any, error) {
	sessionID, err := w.service.Login(ctx, in.ID, in.Password)
	if err != nil {
		return nil, err
	}
	return LoginResult{Success: true, SessionID: sessionID}, nil
}

func (w *Worker) logout(ctx context.Context, in LogoutRequest) (any, error) {
	if err := w.service.Logout(ctx, in.SessionID); err != nil {
		return nil, err
	}
	return AckResult{Success: true}, nil
}

func (w *Worker) validateSession(ctx context.Context, in ValidateSessionRequest) (any, error) {
	valid, err := w.service.ValidateSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return ValidateSessionResult{Valid: valid}, nil
}

func (w *Worker) term(ctx context.Context, _ struct{}) (any, error) {
	term, err := w.service.Term(ctx)
	if err != nil {
		return nil, err
	}
	return term, nil
}

func (w *Worker) setTerm(ctx context.Context, in Term) (any, error) {
	if err := w.service.SetTerm(ctx, in); err != nil {
		return nil, err
	}
	return SetTermResult{Success: true}, nil
}
