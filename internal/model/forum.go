package model

import "time"

// Thread statuses. A deleted thread stays in the table but is hidden from
// members.
const (
	ThreadActive   = "active"
	ThreadFlagged  = "flagged"
	ThreadDeleted  = "deleted"
	ThreadArchived = "archived"
)

// Post statuses.
const (
	PostActive  = "active"
	PostFlagged = "flagged"
	PostDeleted = "deleted"
)

// ForumThread is a community discussion thread.
type ForumThread struct {
	Base
	Title          string    `gorm:"type:varchar(200);not null" json:"title"`
	AuthorID       uint      `gorm:"not null;index" json:"author_id"`
	Tags           []string  `gorm:"type:json;serializer:json" json:"tags"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Pinned         bool      `gorm:"not null;default:false;index" json:"pinned"`
	Views          int64     `gorm:"not null;default:0" json:"views"`
	PostsCount     int64     `gorm:"not null;default:0" json:"posts_count"`
	LastActivityAt time.Time `gorm:"not null;index" json:"last_activity_at"`

	Author User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Flags  []ThreadFlag `gorm:"foreignKey:ThreadID" json:"-"`
}

// TableName sets the forum threads table name.
func (ForumThread) TableName() string {
	return "forum_threads"
}

// ForumPost is one reply inside a thread. The opening message of a thread is
// stored as its first post.
type ForumPost struct {
	Base
	ThreadID uint   `gorm:"not null;index" json:"thread_id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Status   string `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	Author User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Flags  []PostFlag `gorm:"foreignKey:PostID" json:"-"`
}

// TableName sets the forum posts table name.
func (ForumPost) TableName() string {
	return "forum_posts"
}

// ThreadFlag records that a member reported a thread. The composite unique
// index makes repeat flags from the same member no-ops.
type ThreadFlag struct {
	Base
	ThreadID uint `gorm:"not null;uniqueIndex:idx_thread_flagger" json:"thread_id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_thread_flagger" json:"user_id"`
}

// TableName sets the thread flags table name.
func (ThreadFlag) TableName() string {
	return "forum_thread_flags"
}

// PostFlag records that a member reported a post.
type PostFlag struct {
	Base
	PostID uint `gorm:"not null;uniqueIndex:idx_post_flagger" json:"post_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_flagger" json:"user_id"`
}

// TableName sets the post flags table name.
func (PostFlag) TableName() string {
	return "forum_post_flags"
}
