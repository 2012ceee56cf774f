// Package board owns the community posts: creation, an atomic like counter,
// and cursor-paginated listing.
package board

import "time"

// Topics served by the board worker.
const (
	TopicCreatePost = "board.createPost"
	TopicLikePost   = "board.likePost"
	TopicListPosts  = "board.listPosts"
)

// Topics lists every topic this worker consumes, for provisioning.
func Topics() []string {
	return []string{TopicCreatePost, TopicLikePost, TopicListPosts}
}

// MaxLikes caps the like counter; enforced both in SQL and by the stores.
const MaxLikes = 10000

// Post is one board entry.
type Post struct {
	ID        string    `json:"id"`
	StdNo     string    `json:"stdNo"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	IsAdmin   bool      `json:"isAdmin"`
	Likes     int       `json:"likes"`
}

// Wire types.

type CreatePostRequest struct {
	StdNo   string `json:"stdNo"`
	Content string `json:"content"`
}

type CreatePostResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

type LikePostRequest struct {
	ID string `json:"id"`
}

type LikePostResult struct {
	Success bool `json:"success"`
	Likes   int  `json:"likes,omitempty"`
}

type ListPostsRequest struct {
	Cursor string `json:"cursor,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type ListPostsResult struct {
	Data []Post   `json:"data"`
	Meta ListMeta `json:"meta"`
}

type ListMeta struct {
	HasNextPage bool    `json:"hasNextPage"`
	NextCursor  *string `json:"nextCursor"`
}
