package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"learnlink_backend/internal/config"
	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lifecycleEnv struct {
	resources *fakeResourceStore
	users     *fakeUserStore
	activity  *fakeActivityStore
	storage   *StorageService
	svc       *ResourceService
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()
	env := &lifecycleEnv{
		resources: newFakeResourceStore(),
		users:     newFakeUserStore(),
		activity:  newFakeActivityStore(),
		storage:   newTestStorage(t),
	}
	env.svc = NewResourceService(env.resources, env.users, env.activity, env.storage, nil)

	env.users.add(model.User{BaseModel: model.BaseModel{ID: 1}, Name: "Carla Cruz", Email: "carla@school.edu", Role: model.Contributor})
	env.users.add(model.User{BaseModel: model.BaseModel{ID: 2}, Name: "Mia Torres", Email: "mia@school.edu", Role: model.Manager})
	env.users.add(model.User{BaseModel: model.BaseModel{ID: 3}, Name: "Root Admin", Email: "root@school.edu", Role: model.SuperAdmin})
	env.users.add(model.User{BaseModel: model.BaseModel{ID: 4}, Name: "Sam Reyes", Email: "sam@school.edu", Role: model.Student})
	return env
}

func newTestStorage(t *testing.T) *StorageService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.Type = util.StorageLocal
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Storage.Timeout = time.Minute
	return NewStorageService(cfg)
}

func submitInput(title string) SubmitResourceInput {
	return SubmitResourceInput{
		Title:        title,
		Description:  "Intro to fractions with worked examples",
		Subject:      "Math",
		GradeLevel:   "Grade 4",
		ResourceType: "Worksheet",
		FileName:     "fractions.pdf",
		FileSize:     11,
		File:         bytes.NewReader([]byte("hello world")),
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	// no title fails either way
	_, err := env.svc.Submit(ctx, 1, SubmitResourceInput{Subject: "Math", SaveAsDraft: true})
	assert.True(t, util.IsValidation(err))

	// a review submission needs every field and the file
	for _, strip := range []func(*SubmitResourceInput){
		func(in *SubmitResourceInput) { in.Subject = "" },
		func(in *SubmitResourceInput) { in.GradeLevel = " " },
		func(in *SubmitResourceInput) { in.ResourceType = "" },
		func(in *SubmitResourceInput) { in.Description = "" },
		func(in *SubmitResourceInput) { in.File = nil },
	} {
		input := submitInput("Fractions 101")
		strip(&input)
		_, err = env.svc.Submit(ctx, 1, input)
		assert.True(t, util.IsValidation(err))
	}

	// nothing was persisted
	all, total, _ := env.resources.List(ResourceFilter{})
	assert.Empty(t, all)
	assert.Zero(t, total)
}

func TestSubmitDraftNeedsOnlyTitle(t *testing.T) {
	env := newLifecycleEnv(t)

	resource, err := env.svc.Submit(context.Background(), 1, SubmitResourceInput{Title: "WIP notes", SaveAsDraft: true})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, resource.Status)
	assert.Empty(t, resource.FileKey, "no file was uploaded")
	assert.Empty(t, env.resources.notifs)
}

func TestSubmitPendingFansOutToModerators(t *testing.T) {
	env := newLifecycleEnv(t)

	resource, err := env.svc.Submit(context.Background(), 1, submitInput("Fractions 101"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, resource.Status)
	assert.True(t, strings.HasPrefix(resource.FileKey, "ll/"))
	assert.Equal(t, "pdf", resource.FileFormat)

	// one notification per moderator, none for the uploader
	require.Len(t, env.resources.notifs, 2)
	recipients := map[uint]bool{}
	for _, n := range env.resources.notifs {
		recipients[n.UserID] = true
		assert.Equal(t, "New resource pending review", n.Title)
		assert.Equal(t, model.NotifyUpload, n.Type)
		assert.Equal(t, "bi-cloud-arrow-up", n.Icon)
		assert.Contains(t, n.Message, "Carla Cruz")
	}
	assert.True(t, recipients[2])
	assert.True(t, recipients[3])

	require.Len(t, env.resources.logs, 1)
	assert.Equal(t, model.ActivityUpload, env.resources.logs[0].ActivityType)
}

func TestSubmitDraftSkipsFanout(t *testing.T) {
	env := newLifecycleEnv(t)

	input := submitInput("WIP notes")
	input.SaveAsDraft = true
	resource, err := env.svc.Submit(context.Background(), 1, input)
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, resource.Status)
	assert.Empty(t, env.resources.notifs)
}

func TestSubmitForReview(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	draft := env.resources.add(model.Resource{Title: "Draft deck", UploaderID: 1, Status: model.StatusDraft})

	_, err := env.svc.SubmitForReview(ctx, 4, draft.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	resource, err := env.svc.SubmitForReview(ctx, 1, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, resource.Status)
	assert.Len(t, env.resources.notifs, 2)

	_, err = env.svc.SubmitForReview(ctx, 1, draft.ID)
	assert.True(t, util.IsValidation(err))
}

func TestApprove(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	reason := "needs a rubric"
	pending := env.resources.add(model.Resource{
		Title: "Fractions 101", UploaderID: 1,
		Status: model.StatusPending, RejectionReason: &reason,
	})

	_, err := env.svc.Approve(ctx, 1, model.Contributor, pending.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	resource, err := env.svc.Approve(ctx, 2, model.Manager, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, resource.Status)
	assert.Nil(t, resource.RejectionReason)

	stored, _ := env.resources.FindByID(pending.ID)
	assert.Nil(t, stored.RejectionReason)

	// exactly one notification, to the uploader
	require.Len(t, env.resources.notifs, 1)
	notif := env.resources.notifs[0]
	assert.Equal(t, uint(1), notif.UserID)
	assert.Equal(t, "Resource Approved", notif.Title)
	assert.Equal(t, model.NotifyApproved, notif.Type)
	assert.Equal(t, "bi-check-circle-fill", notif.Icon)
	assert.Equal(t, "#d1fae5", notif.IconBg)

	// a re-review double click just re-publishes
	again, err := env.svc.Approve(ctx, 2, model.Manager, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, again.Status)
}

func TestReviewMissingResourceIsNoOp(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	resource, err := env.svc.Approve(ctx, 2, model.Manager, 99)
	require.NoError(t, err)
	assert.Nil(t, resource)

	resource, err = env.svc.Reject(ctx, 2, model.Manager, 99, "gone")
	require.NoError(t, err)
	assert.Nil(t, resource)

	assert.Empty(t, env.resources.notifs, "nobody is notified about a vanished resource")
}

func TestReject(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	pending := env.resources.add(model.Resource{Title: "Fractions 101", UploaderID: 1, Status: model.StatusPending})

	resource, err := env.svc.Reject(ctx, 2, model.Manager, pending.ID, "scan is unreadable")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, resource.Status)
	require.NotNil(t, resource.RejectionReason)
	assert.Equal(t, "scan is unreadable", *resource.RejectionReason)

	require.Len(t, env.resources.notifs, 1)
	notif := env.resources.notifs[0]
	assert.Equal(t, model.NotifyRejected, notif.Type)
	assert.Equal(t, "bi-x-circle-fill", notif.Icon)
	assert.Equal(t, "#fee2e2", notif.IconBg)
	assert.Contains(t, notif.Message, "Reason: scan is unreadable")

	// re-approval clears the stored reason again
	approved, err := env.svc.Approve(ctx, 3, model.SuperAdmin, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, approved.RejectionReason)
}

func TestRejectWithoutReason(t *testing.T) {
	env := newLifecycleEnv(t)
	pending := env.resources.add(model.Resource{Title: "Fractions 101", UploaderID: 1, Status: model.StatusPending})

	resource, err := env.svc.Reject(context.Background(), 2, model.Manager, pending.ID, "   ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, resource.Status)
	assert.Nil(t, resource.RejectionReason)

	require.Len(t, env.resources.notifs, 1)
	assert.Equal(t, "Your resource 'Fractions 101' was not approved.", env.resources.notifs[0].Message)
}

func TestContributorEditReturnsToReview(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	published := env.resources.add(model.Resource{Title: "Fractions 101", UploaderID: 1, Status: model.StatusPublished})

	title := "Fractions 102"
	resource, err := env.svc.Update(ctx, 1, model.Contributor, published.ID, UpdateResourceInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, resource.Status)
	assert.NotEmpty(t, env.resources.notifs, "moderators should be asked to re-review")

	// a moderator's edit keeps the status
	env2 := newLifecycleEnv(t)
	published2 := env2.resources.add(model.Resource{Title: "Fractions 101", UploaderID: 1, Status: model.StatusPublished})
	resource2, err := env2.svc.Update(ctx, 2, model.Manager, published2.ID, UpdateResourceInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, resource2.Status)
	assert.Empty(t, env2.resources.notifs)
}

func TestUpdatePermission(t *testing.T) {
	env := newLifecycleEnv(t)
	published := env.resources.add(model.Resource{Title: "Fractions 101", UploaderID: 1, Status: model.StatusPublished})

	title := "hijacked"
	_, err := env.svc.Update(context.Background(), 4, model.Student, published.ID, UpdateResourceInput{Title: &title})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestListVisibility(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	env.resources.add(model.Resource{Title: "Published", UploaderID: 1, Status: model.StatusPublished})
	env.resources.add(model.Resource{Title: "Pending", UploaderID: 1, Status: model.StatusPending})
	env.resources.add(model.Resource{Title: "Draft", UploaderID: 1, Status: model.StatusDraft})

	// students only see published
	list, total, err := env.svc.List(ctx, 4, model.Student, ResourceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, model.StatusPublished, list[0].Status)

	// the uploader sees all of their own
	list, total, err = env.svc.List(ctx, 1, model.Contributor, ResourceFilter{UploaderID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	_ = list

	// moderators see the unfiltered set
	_, total, err = env.svc.List(ctx, 2, model.Manager, ResourceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestGetHidesUnpublished(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	pending := env.resources.add(model.Resource{Title: "Pending", UploaderID: 1, Status: model.StatusPending})

	_, err := env.svc.Get(ctx, 4, model.Student, pending.ID)
	assert.True(t, util.IsNotFound(err))

	_, err = env.svc.Get(ctx, 1, model.Contributor, pending.ID)
	assert.NoError(t, err)

	_, err = env.svc.Get(ctx, 2, model.Manager, pending.ID)
	assert.NoError(t, err)
}

func TestDownload(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	require.NoError(t, env.storage.Upload(ctx, "ll/abc.pdf", bytes.NewReader([]byte("file body")), 9, "application/pdf"))
	published := env.resources.add(model.Resource{
		Title: "Fractions 101", UploaderID: 1,
		Status: model.StatusPublished, FileKey: "ll/abc.pdf", FileFormat: "pdf",
	})

	resource, content, err := env.svc.Download(ctx, 4, model.Student, published.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("file body"), content)
	assert.Equal(t, "Fractions 101", resource.Title)

	stored, _ := env.resources.FindByID(published.ID)
	assert.Equal(t, 1, stored.DownloadCount)
	require.NotEmpty(t, env.activity.logs)
	assert.Equal(t, model.ActivityDownload, env.activity.logs[len(env.activity.logs)-1].ActivityType)

	// a resource without a stored file
	bare := env.resources.add(model.Resource{Title: "No file", UploaderID: 1, Status: model.StatusPublished})
	_, _, err = env.svc.Download(ctx, 4, model.Student, bare.ID)
	assert.ErrorIs(t, err, util.ErrNoFileAttached)
}

func TestPreviewLeavesCountersAlone(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()

	require.NoError(t, env.storage.Upload(ctx, "ll/abc.pdf", bytes.NewReader([]byte("file body")), 9, "application/pdf"))
	published := env.resources.add(model.Resource{
		Title: "Fractions 101", UploaderID: 1,
		Status: model.StatusPublished, FileKey: "ll/abc.pdf", FileFormat: "pdf",
	})

	resource, content, err := env.svc.Preview(ctx, 4, model.Student, published.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("file body"), content)
	assert.Equal(t, "Fractions 101", resource.Title)

	stored, _ := env.resources.FindByID(published.ID)
	assert.Zero(t, stored.DownloadCount)
	assert.Empty(t, env.activity.logs)
}

func TestBatchDeleteAllOrNothing(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	res := env.resources.add(model.Resource{Title: "Doomed", UploaderID: 1, Status: model.StatusPublished})

	// every attempt fails: nothing may change
	env.resources.failDeletes = deleteTxAttempts
	_, err := env.svc.BatchDelete(ctx, 3, model.SuperAdmin, []uint{res.ID})
	require.Error(t, err)
	assert.Equal(t, deleteTxAttempts, env.resources.deleteCalls)

	stored, ferr := env.resources.FindByID(res.ID)
	require.NoError(t, ferr, "a failed delete must leave the resource in place")
	assert.Equal(t, "Doomed", stored.Title)
	assert.Empty(t, env.resources.logs)
}

func TestBatchDeleteRetriesTransientFailure(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	res := env.resources.add(model.Resource{Title: "Doomed", UploaderID: 1, Status: model.StatusPublished})
	rid := res.ID
	env.resources.notifs = append(env.resources.notifs, &model.Notification{UserID: 1, ResourceID: &rid})

	env.resources.failDeletes = 1
	deleted, err := env.svc.BatchDelete(ctx, 1, model.Contributor, []uint{res.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 2, env.resources.deleteCalls)

	_, ferr := env.resources.FindByID(res.ID)
	assert.True(t, util.IsNotFound(ferr))
	assert.Empty(t, env.resources.notifs, "dependent notifications go with the resource")
	require.Len(t, env.resources.logs, 1)
	assert.Equal(t, model.ActivityDelete, env.resources.logs[0].ActivityType)
}

func TestBatchDeleteFiltersToOwnRows(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	mine := env.resources.add(model.Resource{Title: "Mine", UploaderID: 1, Status: model.StatusPublished})
	theirs := env.resources.add(model.Resource{Title: "Theirs", UploaderID: 4, Status: model.StatusPublished})

	// the contributor's batch silently drops the foreign row
	deleted, err := env.svc.BatchDelete(ctx, 1, model.Contributor, []uint{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, ferr := env.resources.FindByID(mine.ID)
	assert.True(t, util.IsNotFound(ferr))
	kept, ferr := env.resources.FindByID(theirs.ID)
	require.NoError(t, ferr)
	assert.Equal(t, "Theirs", kept.Title)

	// managers get the same treatment; only a super admin is exempt
	_, err = env.svc.BatchDelete(ctx, 2, model.Manager, []uint{theirs.ID})
	assert.True(t, util.IsValidation(err))
	deleted, err = env.svc.BatchDelete(ctx, 3, model.SuperAdmin, []uint{theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestBatchDeleteSkipsMissingIDs(t *testing.T) {
	env := newLifecycleEnv(t)
	ctx := context.Background()
	res := env.resources.add(model.Resource{Title: "Only one", UploaderID: 1, Status: model.StatusPublished})

	deleted, err := env.svc.BatchDelete(ctx, 1, model.Contributor, []uint{77, res.ID, 78})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	// nothing in the batch survives the filter
	_, err = env.svc.BatchDelete(ctx, 1, model.Contributor, []uint{77})
	assert.True(t, util.IsValidation(err))

	_, err = env.svc.BatchDelete(ctx, 1, model.Contributor, nil)
	assert.True(t, util.IsValidation(err))
}
