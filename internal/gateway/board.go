package gateway

import (
	"net/http"
	"strconv"

	"trinity/internal/board"
	"trinity/internal/bus"
)

// Board endpoints sit behind the access-token middleware: the token proves a
// completed portal login without the gateway holding any session.

func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[board.CreatePostRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := bus.Call[board.CreatePostResult](r.Context(), h.requester, board.TopicCreatePost, body, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleLikePost(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[board.LikePostRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := bus.Call[board.LikePostResult](r.Context(), h.requester, board.TopicLikePost, body, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	req := board.ListPostsRequest{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	}

	result, err := bus.Call[board.ListPostsResult](r.Context(), h.requester, board.TopicListPosts, req, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
