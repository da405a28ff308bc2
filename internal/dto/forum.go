package dto

// ThreadCreateRequest opens a new thread. Content becomes the first post.
type ThreadCreateRequest struct {
	Title   string   `json:"title" binding:"required,min=1,max=200"`
	Content string   `json:"content" binding:"required,min=1"`
	Tags    []string `json:"tags" binding:"omitempty,max=5,dive,min=1,max=30"`
}

// PostCreateRequest adds a reply to a thread.
type PostCreateRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// ThreadListRequest filters the thread listing. All=true is honored for
// moderators only and includes non-active threads.
type ThreadListRequest struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1"`
	Tag    string `form:"tag"`
	Search string `form:"search"`
	All    bool   `form:"all"`
}

// ModerateRequest applies a moderation action.
type ModerateRequest struct {
	Action string `json:"action" binding:"required,oneof=delete restore archive pin unpin"`
}

// PostModerateRequest applies a moderation action to a post.
type PostModerateRequest struct {
	Action string `json:"action" binding:"required,oneof=delete restore flag"`
}

// ThreadAuthor is the author summary embedded in forum responses.
type ThreadAuthor struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
}

// ThreadResponse is one thread in a listing or detail view.
type ThreadResponse struct {
	ID             uint         `json:"id"`
	Title          string       `json:"title"`
	Author         ThreadAuthor `json:"author"`
	Tags           []string     `json:"tags"`
	Status         string       `json:"status"`
	Pinned         bool         `json:"pinned"`
	Views          int64        `json:"views"`
	PostsCount     int64        `json:"posts_count"`
	FlagCount      int64        `json:"flag_count,omitempty"`
	LastActivityAt string       `json:"last_activity_at"`
	CreatedAt      string       `json:"created_at"`
}

// PostResponse is one post inside a thread.
type PostResponse struct {
	ID        uint         `json:"id"`
	ThreadID  uint         `json:"thread_id"`
	Author    ThreadAuthor `json:"author"`
	Content   string       `json:"content"`
	Status    string       `json:"status"`
	FlagCount int64        `json:"flag_count,omitempty"`
	CreatedAt string       `json:"created_at"`
}

// ThreadDetailResponse is a thread with its visible posts.
type ThreadDetailResponse struct {
	Thread ThreadResponse `json:"thread"`
	Posts  []PostResponse `json:"posts"`
}

// FlaggedContentResponse is the moderation queue view.
type FlaggedContentResponse struct {
	Threads []ThreadResponse `json:"threads"`
	Posts   []PostResponse   `json:"posts"`
}
