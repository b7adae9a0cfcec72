package service

import (
	"context"
	"testing"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscussionEnv(t *testing.T) (*DiscussionService, *fakeDiscussionStore, *fakeNotificationStore) {
	t.Helper()
	svc, store, notifStore, _ := newDiscussionEnvWithLikes(t)
	return svc, store, notifStore
}

func newDiscussionEnvWithLikes(t *testing.T) (*DiscussionService, *fakeDiscussionStore, *fakeNotificationStore, *fakeLikeStore) {
	t.Helper()
	store := newFakeDiscussionStore()
	notifStore := newFakeNotificationStore()
	likes := newFakeLikeStore()
	notify := NewNotificationService(notifStore, nil)
	return NewDiscussionService(store, likes, notify), store, notifStore, likes
}

func TestDiscussionReply(t *testing.T) {
	svc, _, notifs := newDiscussionEnv(t)
	ctx := context.Background()

	discussion, err := svc.Create(ctx, 1, DiscussionInput{Title: "How do I grade essays?", Content: "Looking for rubrics."})
	require.NoError(t, err)
	assert.Equal(t, "Question", discussion.Type)

	post, err := svc.Reply(ctx, 2, discussion.ID, "Use a four-point rubric.")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)

	// thread owner was told
	require.Len(t, notifs.rows, 1)
	assert.Equal(t, uint(1), notifs.rows[0].UserID)

	// replying to your own thread stays silent
	_, err = svc.Reply(ctx, 1, discussion.ID, "Thanks!")
	require.NoError(t, err)
	assert.Len(t, notifs.rows, 1)

	_, err = svc.Reply(ctx, 2, discussion.ID, "   ")
	assert.True(t, util.IsValidation(err))
}

func TestMarkBestAnswerSingleWinner(t *testing.T) {
	svc, store, _ := newDiscussionEnv(t)
	ctx := context.Background()

	discussion, err := svc.Create(ctx, 1, DiscussionInput{Title: "Q", Content: "?"})
	require.NoError(t, err)
	first, err := svc.Reply(ctx, 2, discussion.ID, "answer one")
	require.NoError(t, err)
	second, err := svc.Reply(ctx, 3, discussion.ID, "answer two")
	require.NoError(t, err)

	// only the thread owner (or a moderator) may mark
	_, err = svc.MarkBestAnswer(ctx, 2, model.Student, discussion.ID, first.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	marked, err := svc.MarkBestAnswer(ctx, 1, model.Student, discussion.ID, first.ID)
	require.NoError(t, err)
	require.NotNil(t, marked.BestAnswerPostID)
	assert.Equal(t, first.ID, *marked.BestAnswerPostID)
	assert.Equal(t, "Answered", marked.Status)

	// re-marking moves the single marker
	marked, err = svc.MarkBestAnswer(ctx, 1, model.Student, discussion.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *marked.BestAnswerPostID)

	stored, _ := store.FindByID(discussion.ID)
	assert.Equal(t, second.ID, *stored.BestAnswerPostID)
}

func TestMarkBestAnswerWrongThread(t *testing.T) {
	svc, _, _ := newDiscussionEnv(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, 1, DiscussionInput{Title: "A", Content: "a"})
	b, _ := svc.Create(ctx, 1, DiscussionInput{Title: "B", Content: "b"})
	post, err := svc.Reply(ctx, 2, b.ID, "on thread B")
	require.NoError(t, err)

	_, err = svc.MarkBestAnswer(ctx, 1, model.Student, a.ID, post.ID)
	assert.True(t, util.IsValidation(err))
}

func TestDeleteReplyClearsBestAnswer(t *testing.T) {
	svc, store, _ := newDiscussionEnv(t)
	ctx := context.Background()

	discussion, _ := svc.Create(ctx, 1, DiscussionInput{Title: "Q", Content: "?"})
	post, err := svc.Reply(ctx, 2, discussion.ID, "the answer")
	require.NoError(t, err)
	_, err = svc.MarkBestAnswer(ctx, 1, model.Student, discussion.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReply(ctx, 2, model.Student, post.ID))

	stored, _ := store.FindByID(discussion.ID)
	assert.Nil(t, stored.BestAnswerPostID)
	_, err = store.FindPost(post.ID)
	assert.True(t, util.IsNotFound(err))
}

func TestDiscussionUpdate(t *testing.T) {
	svc, store, _ := newDiscussionEnv(t)
	ctx := context.Background()

	discussion, err := svc.Create(ctx, 1, DiscussionInput{Title: "Old title", Content: "old", Tags: "math"})
	require.NoError(t, err)

	title := "New title"
	_, err = svc.Update(ctx, 2, model.Student, discussion.ID, &title, nil, nil, nil)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	dtype := "Tip"
	tags := " fractions , , rubrics,math "
	updated, err := svc.Update(ctx, 1, model.Student, discussion.ID, &title, nil, &dtype, &tags)
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "Tip", updated.Type)
	assert.Equal(t, "fractions, rubrics, math", updated.Tags)

	blank := "   "
	_, err = svc.Update(ctx, 1, model.Student, discussion.ID, &blank, nil, nil, nil)
	assert.True(t, util.IsValidation(err))

	// a moderator may edit any thread
	content := "moderated"
	_, err = svc.Update(ctx, 9, model.Manager, discussion.ID, nil, &content, nil, nil)
	require.NoError(t, err)
	stored, _ := store.FindByID(discussion.ID)
	assert.Equal(t, "moderated", stored.Content)
}

func TestPopularTags(t *testing.T) {
	svc, _, _ := newDiscussionEnv(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, DiscussionInput{Title: "A", Content: "a", Tags: "math, rubrics"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, DiscussionInput{Title: "B", Content: "b", Tags: "math, grading"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, DiscussionInput{Title: "C", Content: "c", Tags: " math ,rubrics"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, DiscussionInput{Title: "D", Content: "d"})
	require.NoError(t, err)

	tags, err := svc.PopularTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "math", tags[0])
	assert.Equal(t, "rubrics", tags[1])
	assert.Equal(t, "grading", tags[2])
}

func TestDiscussionDetail(t *testing.T) {
	svc, _, _, likes := newDiscussionEnvWithLikes(t)
	ctx := context.Background()

	thread, err := svc.Create(ctx, 1, DiscussionInput{Title: "Main", Content: "m", Category: "Teaching"})
	require.NoError(t, err)
	sibling, err := svc.Create(ctx, 2, DiscussionInput{Title: "Sibling", Content: "s", Category: "Teaching"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, DiscussionInput{Title: "Elsewhere", Content: "e", Category: "Admin"})
	require.NoError(t, err)

	reply, err := svc.Reply(ctx, 2, thread.ID, "a reply")
	require.NoError(t, err)
	stray, err := svc.Reply(ctx, 2, sibling.ID, "unrelated reply")
	require.NoError(t, err)

	likes.addTarget(model.TargetDiscussion, thread.ID)
	likes.addTarget(model.TargetReply, reply.ID)
	likes.addTarget(model.TargetReply, stray.ID)
	_, _, err = likes.Toggle(7, model.TargetDiscussion, thread.ID)
	require.NoError(t, err)
	_, _, err = likes.Toggle(7, model.TargetReply, reply.ID)
	require.NoError(t, err)
	_, _, err = likes.Toggle(7, model.TargetReply, stray.ID)
	require.NoError(t, err)

	detail, err := svc.Get(ctx, 7, thread.ID)
	require.NoError(t, err)
	assert.True(t, detail.Liked)
	assert.Equal(t, []uint{reply.ID}, detail.LikedReplyIDs, "only replies in this thread count")

	// similar threads share the category and never include the thread itself
	require.Len(t, detail.Similar, 1)
	assert.Equal(t, sibling.ID, detail.Similar[0].ID)

	// anonymous access works with no like state
	anon, err := svc.Get(ctx, 0, thread.ID)
	require.NoError(t, err)
	assert.False(t, anon.Liked)
	assert.Empty(t, anon.LikedReplyIDs)
}

func TestDiscussionDeletePermissions(t *testing.T) {
	svc, store, _ := newDiscussionEnv(t)
	ctx := context.Background()

	discussion, _ := svc.Create(ctx, 1, DiscussionInput{Title: "Q", Content: "?"})
	_, err := svc.Reply(ctx, 2, discussion.ID, "a reply")
	require.NoError(t, err)

	err = svc.Delete(ctx, 2, model.Student, discussion.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// a moderator may delete any thread, posts included
	require.NoError(t, svc.Delete(ctx, 9, model.Manager, discussion.ID))
	_, err = store.FindByID(discussion.ID)
	assert.True(t, util.IsNotFound(err))
	assert.Empty(t, store.posts)
}
