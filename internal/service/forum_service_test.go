package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/model"
)

func TestCreateThreadStoresFirstPost(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")

	thread, err := svc.CreateThread(Actor{ID: author.ID, Role: model.RoleUser}, &dto.ThreadCreateRequest{
		Title:   "Morning routines",
		Content: "What helps you start the day?",
		Tags:    []string{"habits"},
	})
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if thread.Status != model.ThreadActive {
		t.Errorf("status = %q, want %q", thread.Status, model.ThreadActive)
	}
	if thread.PostsCount != 1 {
		t.Errorf("posts_count = %d, want 1", thread.PostsCount)
	}

	var posts []model.ForumPost
	if err := db.Where("thread_id = ?", thread.ID).Find(&posts).Error; err != nil {
		t.Fatalf("load posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].AuthorID != author.ID {
		t.Errorf("post author = %d, want %d", posts[0].AuthorID, author.ID)
	}
}

func TestFlagThreadIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	flagger := createTestUser(t, db, "flagger@example.com")
	other := createTestUser(t, db, "other@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	for i := 0; i < 3; i++ {
		if err := svc.FlagThread(Actor{ID: flagger.ID, Role: model.RoleUser}, thread.ID); err != nil {
			t.Fatalf("FlagThread attempt %d: %v", i+1, err)
		}
	}

	var count int64
	if err := db.Model(&model.ThreadFlag{}).Where("thread_id = ?", thread.ID).Count(&count).Error; err != nil {
		t.Fatalf("count flags: %v", err)
	}
	if count != 1 {
		t.Errorf("flag rows after repeats = %d, want 1", count)
	}

	if err := svc.FlagThread(Actor{ID: other.ID, Role: model.RoleUser}, thread.ID); err != nil {
		t.Fatalf("FlagThread second member: %v", err)
	}
	if err := db.Model(&model.ThreadFlag{}).Where("thread_id = ?", thread.ID).Count(&count).Error; err != nil {
		t.Fatalf("count flags: %v", err)
	}
	if count != 2 {
		t.Errorf("flag rows after second member = %d, want 2", count)
	}

	var updated model.ForumThread
	if err := db.First(&updated, thread.ID).Error; err != nil {
		t.Fatalf("reload thread: %v", err)
	}
	if updated.Status != model.ThreadFlagged {
		t.Errorf("status = %q, want %q", updated.Status, model.ThreadFlagged)
	}
}

func TestFlagThreadUnknown(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	user := createTestUser(t, db, "user@example.com")

	err := svc.FlagThread(Actor{ID: user.ID, Role: model.RoleUser}, 9999)
	if !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("err = %v, want ErrThreadNotFound", err)
	}
}

func TestFlagPostSetsFlaggedStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	flagger := createTestUser(t, db, "flagger@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	var post model.ForumPost
	if err := db.Where("thread_id = ?", thread.ID).First(&post).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.FlagPost(Actor{ID: flagger.ID, Role: model.RoleUser}, post.ID); err != nil {
			t.Fatalf("FlagPost attempt %d: %v", i+1, err)
		}
	}

	var count int64
	if err := db.Model(&model.PostFlag{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		t.Fatalf("count flags: %v", err)
	}
	if count != 1 {
		t.Errorf("flag rows = %d, want 1", count)
	}

	if err := db.First(&post, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.Status != model.PostFlagged {
		t.Errorf("status = %q, want %q", post.Status, model.PostFlagged)
	}
}

func TestModerateThreadActions(t *testing.T) {
	tests := []struct {
		action     string
		fromStatus string
		wantStatus string
		wantPinned bool
	}{
		{action: "delete", fromStatus: model.ThreadFlagged, wantStatus: model.ThreadDeleted},
		{action: "restore", fromStatus: model.ThreadFlagged, wantStatus: model.ThreadActive},
		{action: "restore", fromStatus: model.ThreadDeleted, wantStatus: model.ThreadActive},
		{action: "archive", fromStatus: model.ThreadActive, wantStatus: model.ThreadArchived},
		{action: "pin", fromStatus: model.ThreadActive, wantStatus: model.ThreadActive, wantPinned: true},
		{action: "unpin", fromStatus: model.ThreadActive, wantStatus: model.ThreadActive},
	}

	for _, tt := range tests {
		t.Run(tt.action+"_from_"+tt.fromStatus, func(t *testing.T) {
			db := newTestDB(t)
			svc := newTestForumService(db)
			author := createTestUser(t, db, "author@example.com")
			thread := createTestThread(t, db, author.ID, tt.fromStatus)

			updated, err := svc.ModerateThread(thread.ID, tt.action)
			if err != nil {
				t.Fatalf("ModerateThread(%s): %v", tt.action, err)
			}
			if updated.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", updated.Status, tt.wantStatus)
			}
			if updated.Pinned != tt.wantPinned {
				t.Errorf("pinned = %v, want %v", updated.Pinned, tt.wantPinned)
			}
		})
	}
}

func TestModerateThreadRestoreClearsFlags(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	flagger := createTestUser(t, db, "flagger@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	if err := svc.FlagThread(Actor{ID: flagger.ID, Role: model.RoleUser}, thread.ID); err != nil {
		t.Fatalf("FlagThread: %v", err)
	}

	if _, err := svc.ModerateThread(thread.ID, "restore"); err != nil {
		t.Fatalf("ModerateThread(restore): %v", err)
	}

	var count int64
	if err := db.Model(&model.ThreadFlag{}).Where("thread_id = ?", thread.ID).Count(&count).Error; err != nil {
		t.Fatalf("count flags: %v", err)
	}
	if count != 0 {
		t.Errorf("flags after restore = %d, want 0", count)
	}
}

func TestModerateThreadUnknownAction(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	_, err := svc.ModerateThread(thread.ID, "promote")
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
}

func TestModeratePostRestoreClearsFlags(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	flagger := createTestUser(t, db, "flagger@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	var post model.ForumPost
	if err := db.Where("thread_id = ?", thread.ID).First(&post).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if err := svc.FlagPost(Actor{ID: flagger.ID, Role: model.RoleUser}, post.ID); err != nil {
		t.Fatalf("FlagPost: %v", err)
	}

	restored, err := svc.ModeratePost(author.ID, post.ID, "restore")
	if err != nil {
		t.Fatalf("ModeratePost(restore): %v", err)
	}
	if restored.Status != model.PostActive {
		t.Errorf("status = %q, want %q", restored.Status, model.PostActive)
	}

	var count int64
	if err := db.Model(&model.PostFlag{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		t.Fatalf("count flags: %v", err)
	}
	if count != 0 {
		t.Errorf("flags after restore = %d, want 0", count)
	}
}

func TestAddPostDeletedThreadLooksMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	replier := createTestUser(t, db, "replier@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadDeleted)

	_, err := svc.AddPost(Actor{ID: replier.ID, Role: model.RoleUser}, thread.ID, &dto.PostCreateRequest{Content: "hi"})
	if !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("err = %v, want ErrThreadNotFound", err)
	}
}

func TestAddPostAcceptsFlaggedAndArchivedThreads(t *testing.T) {
	for _, status := range []string{model.ThreadFlagged, model.ThreadArchived} {
		t.Run(status, func(t *testing.T) {
			db := newTestDB(t)
			svc := newTestForumService(db)
			author := createTestUser(t, db, "author@example.com")
			replier := createTestUser(t, db, "replier@example.com")
			thread := createTestThread(t, db, author.ID, status)

			post, err := svc.AddPost(Actor{ID: replier.ID, Role: model.RoleUser}, thread.ID, &dto.PostCreateRequest{Content: "still talking"})
			if err != nil {
				t.Fatalf("AddPost: %v", err)
			}
			if post.Status != model.PostActive {
				t.Errorf("post status = %q, want %q", post.Status, model.PostActive)
			}

			var updated model.ForumThread
			if err := db.First(&updated, thread.ID).Error; err != nil {
				t.Fatalf("reload thread: %v", err)
			}
			if updated.PostsCount != 2 {
				t.Errorf("posts_count = %d, want 2", updated.PostsCount)
			}
		})
	}
}

func TestAddPostUpdatesThreadAndNotifies(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	replier := createTestUser(t, db, "replier@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	before := thread.LastActivityAt
	reply, err := svc.AddPost(Actor{ID: replier.ID, Role: model.RoleUser}, thread.ID, &dto.PostCreateRequest{Content: "That helped me too"})
	if err != nil {
		t.Fatalf("AddPost: %v", err)
	}

	var updated model.ForumThread
	if err := db.First(&updated, thread.ID).Error; err != nil {
		t.Fatalf("reload thread: %v", err)
	}
	if updated.PostsCount != 2 {
		t.Errorf("posts_count = %d, want 2", updated.PostsCount)
	}
	if updated.LastActivityAt.Before(before) {
		t.Errorf("last_activity_at went backwards")
	}

	var notifications []model.Notification
	if err := db.Where("recipient_id = ?", author.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	n := notifications[0]
	if n.Type != model.NotificationForumReply {
		t.Errorf("type = %q, want %q", n.Type, model.NotificationForumReply)
	}
	if n.ActorID == nil || *n.ActorID != replier.ID {
		t.Errorf("actor_id = %v, want %d", n.ActorID, replier.ID)
	}
	if n.ReferenceID == nil || *n.ReferenceID != reply.ID {
		t.Errorf("reference_id = %v, want post %d", n.ReferenceID, reply.ID)
	}
}

func TestAddPostSelfReplyNotNotified(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	if _, err := svc.AddPost(Actor{ID: author.ID, Role: model.RoleUser}, thread.ID, &dto.PostCreateRequest{Content: "bumping my own thread"}); err != nil {
		t.Fatalf("AddPost: %v", err)
	}

	var count int64
	if err := db.Model(&model.Notification{}).Where("recipient_id = ?", author.ID).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 0 {
		t.Errorf("self reply produced %d notifications, want 0", count)
	}
}

func TestGetThreadVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadDeleted)

	member := Actor{ID: author.ID, Role: model.RoleUser}
	if _, err := svc.GetThread(context.Background(), member, thread.ID, ""); !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("member err = %v, want ErrThreadNotFound", err)
	}

	admin := Actor{ID: 99, Role: model.RoleAdmin}
	detail, err := svc.GetThread(context.Background(), admin, thread.ID, "")
	if err != nil {
		t.Fatalf("admin GetThread: %v", err)
	}
	if detail.Thread.Status != model.ThreadDeleted {
		t.Errorf("admin sees status %q, want %q", detail.Thread.Status, model.ThreadDeleted)
	}
}

func TestGetThreadHidesDeletedPosts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	replier := createTestUser(t, db, "replier@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	post, err := svc.AddPost(Actor{ID: replier.ID, Role: model.RoleUser}, thread.ID, &dto.PostCreateRequest{Content: "removed later"})
	if err != nil {
		t.Fatalf("AddPost: %v", err)
	}
	if _, err := svc.ModeratePost(author.ID, post.ID, "delete"); err != nil {
		t.Fatalf("ModeratePost(delete): %v", err)
	}

	member, err := svc.GetThread(context.Background(), Actor{ID: replier.ID, Role: model.RoleUser}, thread.ID, "")
	if err != nil {
		t.Fatalf("member GetThread: %v", err)
	}
	if len(member.Posts) != 1 {
		t.Errorf("member sees %d posts, want 1", len(member.Posts))
	}

	admin, err := svc.GetThread(context.Background(), Actor{ID: 99, Role: model.RoleAdmin}, thread.ID, "")
	if err != nil {
		t.Fatalf("admin GetThread: %v", err)
	}
	if len(admin.Posts) != 2 {
		t.Errorf("admin sees %d posts, want 2", len(admin.Posts))
	}
}

func TestListThreadsPinnedFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")

	older := createTestThread(t, db, author.ID, model.ThreadActive)
	newer := createTestThread(t, db, author.ID, model.ThreadActive)
	if err := db.Model(&model.ForumThread{}).Where("id = ?", newer.ID).
		Update("last_activity_at", older.LastActivityAt.Add(time.Hour)).Error; err != nil {
		t.Fatalf("bump activity: %v", err)
	}
	if err := db.Model(&model.ForumThread{}).Where("id = ?", older.ID).
		Update("pinned", true).Error; err != nil {
		t.Fatalf("pin thread: %v", err)
	}

	threads, total, err := svc.ListThreads(Actor{ID: author.ID, Role: model.RoleUser}, &dto.ThreadListRequest{})
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(threads) != 2 {
		t.Fatalf("got %d threads, want 2", len(threads))
	}
	if threads[0].ID != older.ID {
		t.Errorf("first thread = %d, want pinned thread %d", threads[0].ID, older.ID)
	}
}

func TestListThreadsHidesNonActiveFromMembers(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")

	createTestThread(t, db, author.ID, model.ThreadActive)
	createTestThread(t, db, author.ID, model.ThreadDeleted)
	createTestThread(t, db, author.ID, model.ThreadArchived)

	member := Actor{ID: author.ID, Role: model.RoleUser}
	_, total, err := svc.ListThreads(member, &dto.ThreadListRequest{})
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if total != 1 {
		t.Errorf("member total = %d, want 1", total)
	}

	// all=true only takes effect for moderators
	_, total, err = svc.ListThreads(member, &dto.ThreadListRequest{All: true})
	if err != nil {
		t.Fatalf("ListThreads all: %v", err)
	}
	if total != 1 {
		t.Errorf("member all=true total = %d, want 1", total)
	}

	admin := Actor{ID: 99, Role: model.RoleAdmin}
	_, total, err = svc.ListThreads(admin, &dto.ThreadListRequest{All: true})
	if err != nil {
		t.Fatalf("ListThreads admin all: %v", err)
	}
	if total != 3 {
		t.Errorf("admin all=true total = %d, want 3", total)
	}
}

func TestListThreadsClampsPagination(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	for i := 0; i < 15; i++ {
		createTestThread(t, db, author.ID, model.ThreadActive)
	}

	// zero values fall back to the default page size
	threads, _, err := svc.ListThreads(Actor{ID: author.ID, Role: model.RoleUser}, &dto.ThreadListRequest{})
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if len(threads) != 10 {
		t.Errorf("default page size = %d, want 10", len(threads))
	}

	// oversized limits clamp to the maximum
	threads, _, err = svc.ListThreads(Actor{ID: author.ID, Role: model.RoleUser}, &dto.ThreadListRequest{Limit: 100000})
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if len(threads) != 15 {
		t.Errorf("clamped listing = %d threads, want 15", len(threads))
	}
}

func TestListFlagged(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	flagger := createTestUser(t, db, "flagger@example.com")

	flagged := createTestThread(t, db, author.ID, model.ThreadActive)
	createTestThread(t, db, author.ID, model.ThreadActive)
	if err := svc.FlagThread(Actor{ID: flagger.ID, Role: model.RoleUser}, flagged.ID); err != nil {
		t.Fatalf("FlagThread: %v", err)
	}

	resp, total, err := svc.ListFlagged(1, 20)
	if err != nil {
		t.Fatalf("ListFlagged: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(resp.Threads) != 1 {
		t.Fatalf("got %d flagged threads, want 1", len(resp.Threads))
	}
	if resp.Threads[0].FlagCount != 1 {
		t.Errorf("flag_count = %d, want 1", resp.Threads[0].FlagCount)
	}
}

func TestReconcilePostsCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	replier := createTestUser(t, db, "replier@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	post, err := svc.AddPost(Actor{ID: replier.ID, Role: model.RoleUser}, thread.ID, &dto.PostCreateRequest{Content: "reply"})
	if err != nil {
		t.Fatalf("AddPost: %v", err)
	}
	if _, err := svc.ModeratePost(author.ID, post.ID, "delete"); err != nil {
		t.Fatalf("ModeratePost(delete): %v", err)
	}

	// drift the counter on purpose
	if err := db.Model(&model.ForumThread{}).Where("id = ?", thread.ID).
		Update("posts_count", 42).Error; err != nil {
		t.Fatalf("drift counter: %v", err)
	}

	if err := svc.ReconcilePostsCounts(); err != nil {
		t.Fatalf("ReconcilePostsCounts: %v", err)
	}

	var updated model.ForumThread
	if err := db.First(&updated, thread.ID).Error; err != nil {
		t.Fatalf("reload thread: %v", err)
	}
	if updated.PostsCount != 1 {
		t.Errorf("posts_count = %d, want 1 (deleted posts excluded)", updated.PostsCount)
	}
}

func TestModeratePostFlagIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	thread := createTestThread(t, db, author.ID, model.ThreadActive)

	var post model.ForumPost
	if err := db.Where("thread_id = ?", thread.ID).First(&post).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}

	for i := 0; i < 2; i++ {
		flagged, err := svc.ModeratePost(admin.ID, post.ID, "flag")
		if err != nil {
			t.Fatalf("ModeratePost(flag) #%d: %v", i+1, err)
		}
		if flagged.Status != model.PostFlagged {
			t.Errorf("status = %q, want %q", flagged.Status, model.PostFlagged)
		}
	}

	var count int64
	if err := db.Model(&model.PostFlag{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		t.Fatalf("count flags: %v", err)
	}
	if count != 1 {
		t.Errorf("flag rows = %d, want 1", count)
	}
}

func TestListThreadsSearchFiltersByTitle(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := createTestUser(t, db, "author@example.com")
	createTestThread(t, db, author.ID, model.ThreadActive)

	other := &model.ForumThread{
		Title:          "Breathing exercises for panic",
		AuthorID:       author.ID,
		Status:         model.ThreadActive,
		PostsCount:     1,
		LastActivityAt: time.Now(),
	}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("create thread: %v", err)
	}

	member := Actor{ID: author.ID, Role: model.RoleUser}
	threads, total, err := svc.ListThreads(member, &dto.ThreadListRequest{Search: "Breathing"})
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if total != 1 || len(threads) != 1 {
		t.Fatalf("got %d threads (total %d), want 1", len(threads), total)
	}
	if threads[0].Title != other.Title {
		t.Errorf("title = %q, want %q", threads[0].Title, other.Title)
	}
}
