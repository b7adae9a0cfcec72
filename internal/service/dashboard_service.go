package service

import (
	"context"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
)

const recommendationLimit = 5

// DashboardStats is the per-user landing page payload.
type DashboardStats struct {
	CompletedResources int64                   `json:"completedResources"`
	Bookmarks          int                     `json:"bookmarks"`
	RecentActivity     []model.UserActivityLog `json:"recentActivity"`
	Recommendations    []model.Recommendation  `json:"recommendations"`
}

// AdminReport aggregates the moderation and usage numbers shown on the
// reports page.
type AdminReport struct {
	ResourcesByStatus map[model.ResourceStatus]int64 `json:"resourcesByStatus"`
	UsersByRole       map[model.UserRole]int64       `json:"usersByRole"`
	TopRated          []model.Resource               `json:"topRated"`
	MostViewed        []model.Resource               `json:"mostViewed"`
	MostDownloaded    []model.Resource               `json:"mostDownloaded"`
	UploadsBySubject  map[string]int64               `json:"uploadsBySubject"`
	RecentActivity    []model.UserActivityLog        `json:"recentActivity"`
}

// ProfileOverview is everything the profile page shows about the caller:
// the account plus their uploads, lessons, discussions and liked resources.
type ProfileOverview struct {
	User           *model.User        `json:"user"`
	Uploads        []model.Resource   `json:"uploads"`
	Lessons        []model.Lesson     `json:"lessons"`
	Discussions    []model.Discussion `json:"discussions"`
	LikedResources []model.Resource   `json:"likedResources"`
}

// DashboardService assembles dashboards, profile overviews, admin reports
// and the rule-based recommendations.
type DashboardService struct {
	Stats           StatsStore
	Activity        ActivityStore
	Histories       ReadingHistoryStore
	Recommendations RecommendationStore
	Users           UserStore
	Resources       ResourceStore
	Lessons         LessonStore
	Discussions     DiscussionStore
	Likes           LikeStore
}

func NewDashboardService(stats StatsStore, activity ActivityStore, histories ReadingHistoryStore, recommendations RecommendationStore,
	users UserStore, resources ResourceStore, lessons LessonStore, discussions DiscussionStore, likes LikeStore) *DashboardService {
	return &DashboardService{
		Stats:           stats,
		Activity:        activity,
		Histories:       histories,
		Recommendations: recommendations,
		Users:           users,
		Resources:       resources,
		Lessons:         lessons,
		Discussions:     discussions,
		Likes:           likes,
	}
}

// Dashboard returns the caller's personal stats.
func (s *DashboardService) Dashboard(ctx context.Context, userID uint) (*DashboardStats, error) {
	completed, err := s.Histories.CountCompleted(userID)
	if err != nil {
		return nil, err
	}

	bookmarked, err := s.Histories.ListByUser(userID, true)
	if err != nil {
		return nil, err
	}

	activity, err := s.Activity.ListByUser(userID, 10)
	if err != nil {
		return nil, err
	}

	recs, err := s.Recommendations.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		CompletedResources: completed,
		Bookmarks:          len(bookmarked),
		RecentActivity:     activity,
		Recommendations:    recs,
	}, nil
}

// Profile returns the caller's profile page: the account and everything
// they have uploaded, shared, asked and liked.
func (s *DashboardService) Profile(ctx context.Context, userID uint) (*ProfileOverview, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	uploads, _, err := s.Resources.List(ResourceFilter{UploaderID: userID})
	if err != nil {
		return nil, err
	}
	lessons, err := s.Lessons.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	discussions, err := s.Discussions.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	likedIDs, err := s.Likes.ListLikedTargetIDs(userID, model.TargetResource)
	if err != nil {
		return nil, err
	}
	liked, err := s.Resources.ListByIDs(likedIDs)
	if err != nil {
		return nil, err
	}

	return &ProfileOverview{
		User:           user,
		Uploads:        uploads,
		Lessons:        lessons,
		Discussions:    discussions,
		LikedResources: liked,
	}, nil
}

// Report returns the moderator-only aggregate report.
func (s *DashboardService) Report(ctx context.Context, actorRole model.UserRole) (*AdminReport, error) {
	if !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	byStatus, err := s.Stats.CountResourcesByStatus()
	if err != nil {
		return nil, err
	}
	byRole, err := s.Stats.CountUsersByRole()
	if err != nil {
		return nil, err
	}
	topRated, err := s.Stats.TopRated(10)
	if err != nil {
		return nil, err
	}
	mostViewed, err := s.Stats.MostViewed(10)
	if err != nil {
		return nil, err
	}
	mostDownloaded, err := s.Stats.MostDownloaded(10)
	if err != nil {
		return nil, err
	}
	bySubject, err := s.Stats.UploadsBySubject()
	if err != nil {
		return nil, err
	}
	recent, err := s.Activity.ListRecent(20)
	if err != nil {
		return nil, err
	}

	return &AdminReport{
		ResourcesByStatus: byStatus,
		UsersByRole:       byRole,
		TopRated:          topRated,
		MostViewed:        mostViewed,
		MostDownloaded:    mostDownloaded,
		UploadsBySubject:  bySubject,
		RecentActivity:    recent,
	}, nil
}

// RefreshRecommendations rebuilds the caller's recommendation rows from the
// top-rated and trending queries, skipping resources already in their
// reading history.
func (s *DashboardService) RefreshRecommendations(ctx context.Context, userID uint) ([]model.Recommendation, error) {
	seen := make(map[uint]bool)
	history, err := s.Histories.ListByUser(userID, false)
	if err != nil {
		return nil, err
	}
	for _, h := range history {
		seen[h.ResourceID] = true
	}

	topRated, err := s.Stats.TopRated(recommendationLimit * 2)
	if err != nil {
		return nil, err
	}
	trending, err := s.Stats.MostViewed(recommendationLimit * 2)
	if err != nil {
		return nil, err
	}

	var recs []model.Recommendation
	picked := make(map[uint]bool)
	for _, r := range topRated {
		if len(recs) >= recommendationLimit {
			break
		}
		if seen[r.ID] || picked[r.ID] {
			continue
		}
		picked[r.ID] = true
		recs = append(recs, model.Recommendation{
			UserID:             userID,
			ResourceID:         r.ID,
			RecommendationType: model.RecommendTopRated,
		})
	}
	for _, r := range trending {
		if len(recs) >= recommendationLimit*2 {
			break
		}
		if seen[r.ID] || picked[r.ID] {
			continue
		}
		picked[r.ID] = true
		recs = append(recs, model.Recommendation{
			UserID:             userID,
			ResourceID:         r.ID,
			RecommendationType: model.RecommendTrending,
		})
	}

	if err := s.Recommendations.Replace(userID, recs); err != nil {
		return nil, err
	}
	return recs, nil
}
