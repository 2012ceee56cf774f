package parsing

import (
	"context"

	"trinity/internal/bus"
)

// Worker binds the parsing operations to bus topics.
type Worker struct {
	client *Client
}

func NewWorker(client *Client) *Worker {
	return &Worker{client: client}
}

func (w *Worker) Register(r *bus.Responder) {
	r.Handle(TopicSubjectInfo, bus.JSONHandler(w.subjectInfo))
	r.Handle(TopicGrade, bus.JSONHandler(w.grade))
}

func (w *Worker) subjectInfo(ctx context.Context, in SubjectInfoRequest) (any, error) {
	return w.client.SubjectInfo(ctx, in)
}

func (w *Worker) grade(ctx context.Context, in GradeRequest) (any, error) {
	return w.client.Grades(ctx, in)
}
