package service

import (
	"context"
	"testing"
	"time"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dashboardEnv struct {
	stats       *fakeStatsStore
	activity    *fakeActivityStore
	histories   *fakeHistoryStore
	recs        *fakeRecommendationStore
	users       *fakeUserStore
	resources   *fakeResourceStore
	lessons     *fakeLessonStore
	discussions *fakeDiscussionStore
	likes       *fakeLikeStore
	svc         *DashboardService
}

func newDashboardEnv(t *testing.T) *dashboardEnv {
	t.Helper()
	env := &dashboardEnv{
		stats:       &fakeStatsStore{},
		activity:    newFakeActivityStore(),
		histories:   newFakeHistoryStore(),
		recs:        newFakeRecommendationStore(),
		users:       newFakeUserStore(),
		resources:   newFakeResourceStore(),
		lessons:     newFakeLessonStore(),
		discussions: newFakeDiscussionStore(),
		likes:       newFakeLikeStore(),
	}
	env.svc = NewDashboardService(env.stats, env.activity, env.histories, env.recs,
		env.users, env.resources, env.lessons, env.discussions, env.likes)
	return env
}

func TestReportRequiresModerator(t *testing.T) {
	svc := newDashboardEnv(t).svc

	_, err := svc.Report(context.Background(), model.Student)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Report(context.Background(), model.Contributor)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	report, err := svc.Report(context.Background(), model.Manager)
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestDashboardCounts(t *testing.T) {
	env := newDashboardEnv(t)
	svc, histories, activity := env.svc, env.histories, env.activity

	now := time.Now()
	require.NoError(t, histories.Save(&model.ReadingHistory{UserID: 7, ResourceID: 1, ProgressStatus: model.ProgressCompleted, CompletedDate: &now}))
	require.NoError(t, histories.Save(&model.ReadingHistory{UserID: 7, ResourceID: 2, ProgressStatus: model.ProgressInProgress, IsBookmarked: true}))
	require.NoError(t, histories.Save(&model.ReadingHistory{UserID: 8, ResourceID: 1, ProgressStatus: model.ProgressCompleted}))
	require.NoError(t, activity.Log(&model.UserActivityLog{UserID: 7, ActivityType: model.ActivityView}))

	stats, err := svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.CompletedResources)
	assert.Equal(t, 1, stats.Bookmarks)
	assert.Len(t, stats.RecentActivity, 1)
}

func TestProfileOverview(t *testing.T) {
	env := newDashboardEnv(t)
	ctx := context.Background()

	env.users.add(model.User{BaseModel: model.BaseModel{ID: 7}, Name: "Carla Cruz", Role: model.Contributor})
	mine := env.resources.add(model.Resource{Title: "Mine", UploaderID: 7, Status: model.StatusPublished})
	other := env.resources.add(model.Resource{Title: "Someone else's", UploaderID: 8, Status: model.StatusPublished})
	require.NoError(t, env.lessons.Create(&model.Lesson{UserID: 7, Title: "A lesson"}))
	require.NoError(t, env.discussions.Create(&model.Discussion{UserID: 7, Title: "A thread"}))
	require.NoError(t, env.discussions.Create(&model.Discussion{UserID: 8, Title: "Not mine"}))

	env.likes.addTarget(model.TargetResource, other.ID)
	_, _, err := env.likes.Toggle(7, model.TargetResource, other.ID)
	require.NoError(t, err)

	profile, err := env.svc.Profile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Carla Cruz", profile.User.Name)
	require.Len(t, profile.Uploads, 1)
	assert.Equal(t, mine.ID, profile.Uploads[0].ID)
	assert.Len(t, profile.Lessons, 1)
	require.Len(t, profile.Discussions, 1)
	assert.Equal(t, "A thread", profile.Discussions[0].Title)
	require.Len(t, profile.LikedResources, 1)
	assert.Equal(t, other.ID, profile.LikedResources[0].ID)

	_, err = env.svc.Profile(ctx, 99)
	assert.True(t, util.IsNotFound(err))
}

func TestRefreshRecommendationsSkipsHistory(t *testing.T) {
	env := newDashboardEnv(t)
	env.stats.topRated = []model.Resource{
		{BaseModel: model.BaseModel{ID: 1}},
		{BaseModel: model.BaseModel{ID: 2}},
	}
	env.stats.viewed = []model.Resource{
		{BaseModel: model.BaseModel{ID: 2}},
		{BaseModel: model.BaseModel{ID: 3}},
	}
	svc, histories, recs := env.svc, env.histories, env.recs

	// resource 1 is already in the user's history
	require.NoError(t, histories.Save(&model.ReadingHistory{UserID: 7, ResourceID: 1}))

	out, err := svc.RefreshRecommendations(context.Background(), 7)
	require.NoError(t, err)

	ids := map[uint]string{}
	for _, rec := range out {
		ids[rec.ResourceID] = rec.RecommendationType
	}
	assert.NotContains(t, ids, uint(1), "already-read resources are skipped")
	assert.Equal(t, model.RecommendTopRated, ids[2], "top-rated wins when a resource appears in both lists")
	assert.Equal(t, model.RecommendTrending, ids[3])

	stored, _ := recs.ListByUser(7)
	assert.Len(t, stored, len(out))
}
