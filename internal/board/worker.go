package board

import (
	"context"

	"trinity/internal/bus"
)

// Worker binds the board operations to bus topics.
type Worker struct {
	service *Service
}

func NewWorker(service *Service) *Worker {
	return &Worker{service: service}
}

func (w *Worker) Register(r *bus.Responder) {
	r.Handle(TopicCreatePost, bus.JSONHandler(w.createPost))
	r.Handle(TopicLikePost, bus.JSONHandler(w.likePost))
	r.Handle(TopicListPosts, bus.JSONHandler(w.listPosts))
}

func (w *Worker) createPost(ctx context.Context, in CreatePostRequest) (any, error) {
	post, err := w.service.CreatePost(ctx, in.StdNo, in.Content, false)
	if err != nil {
		return nil, err
	}
	return CreatePostResult{Success: true, ID: post.ID}, nil
}

func (w *Worker) likePost(ctx context.Context, in LikePostRequest) (any, error) {
	likes, err := w.service.LikePost(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return LikePostResult{Success: true, Likes: likes}, nil
}

func (w *Worker) listPosts(ctx context.Context, in ListPostsRequest) (any, error) {
	return w.service.ListPosts(ctx, in.Cursor, in.Limit)
}
