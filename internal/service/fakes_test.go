package service

import (
	"errors"
	"sort"
	"sync"
	"time"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
)

// In-memory stores backing the service tests. They mirror the database
// semantics the services rely on: copies out, atomic toggles, all-or-nothing
// cascades with injectable failures.

type fakeResourceStore struct {
	mu        sync.Mutex
	nextID    uint
	resources map[uint]*model.Resource
	logs      []*model.UserActivityLog
	notifs    []*model.Notification

	failDeletes int // remaining DeleteCascade calls to fail
	deleteCalls int
}

func newFakeResourceStore() *fakeResourceStore {
	return &fakeResourceStore{resources: make(map[uint]*model.Resource)}
}

func (s *fakeResourceStore) FindByID(id uint) (*model.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resources[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *fakeResourceStore) List(filter ResourceFilter) ([]model.Resource, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Resource
	for _, res := range s.resources {
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		if filter.UploaderID != 0 && res.UploaderID != filter.UploaderID {
			continue
		}
		if filter.Subject != "" && res.Subject != filter.Subject {
			continue
		}
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeResourceStore) ListByIDs(ids []uint) ([]model.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Resource
	for _, id := range ids {
		if res, ok := s.resources[id]; ok {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeResourceStore) CreateWithSideEffects(res *model.Resource, log *model.UserActivityLog, notifs []*model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	res.ID = s.nextID
	cp := *res
	s.resources[res.ID] = &cp
	if log != nil {
		log.ResourceID = &res.ID
		s.logs = append(s.logs, log)
	}
	for _, n := range notifs {
		if n.ResourceID == nil {
			n.ResourceID = &res.ID
		}
		s.notifs = append(s.notifs, n)
	}
	return nil
}

func (s *fakeResourceStore) SaveWithSideEffects(res *model.Resource, log *model.UserActivityLog, notifs []*model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[res.ID]; !ok {
		return util.ErrNotFound
	}
	cp := *res
	s.resources[res.ID] = &cp
	if log != nil {
		s.logs = append(s.logs, log)
	}
	s.notifs = append(s.notifs, notifs...)
	return nil
}

func (s *fakeResourceStore) UpdateRating(id uint, rating float64, ratingCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resources[id]
	if !ok {
		return util.ErrNotFound
	}
	res.Rating = rating
	res.RatingCount = ratingCount
	return nil
}

func (s *fakeResourceStore) IncrementView(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resources[id]
	if !ok {
		return util.ErrNotFound
	}
	res.ViewCount++
	return nil
}

func (s *fakeResourceStore) IncrementDownload(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resources[id]
	if !ok {
		return util.ErrNotFound
	}
	res.DownloadCount++
	return nil
}

func (s *fakeResourceStore) DeleteCascade(ids []uint, logs []*model.UserActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.failDeletes > 0 {
		s.failDeletes--
		return errors.New("deadlock detected")
	}
	for _, id := range ids {
		if _, ok := s.resources[id]; !ok {
			return util.ErrNotFound
		}
	}
	for _, id := range ids {
		delete(s.resources, id)
		kept := s.notifs[:0]
		for _, n := range s.notifs {
			if n.ResourceID == nil || *n.ResourceID != id {
				kept = append(kept, n)
			}
		}
		s.notifs = kept
	}
	s.logs = append(s.logs, logs...)
	return nil
}

// add seeds a resource directly, bypassing the lifecycle.
func (s *fakeResourceStore) add(res model.Resource) *model.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.ID == 0 {
		s.nextID++
		res.ID = s.nextID
	} else if res.ID > s.nextID {
		s.nextID = res.ID
	}
	s.resources[res.ID] = &res
	return &res
}

type likeKey struct {
	user   uint
	target model.LikeTarget
	id     uint
}

type fakeLikeStore struct {
	mu      sync.Mutex
	likes   map[likeKey]bool
	counts  map[likeKey]int // user field zeroed, one counter per target
	targets map[model.LikeTarget]map[uint]bool
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{
		likes:   make(map[likeKey]bool),
		counts:  make(map[likeKey]int),
		targets: make(map[model.LikeTarget]map[uint]bool),
	}
}

func (s *fakeLikeStore) addTarget(target model.LikeTarget, id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.targets[target] == nil {
		s.targets[target] = make(map[uint]bool)
	}
	s.targets[target][id] = true
}

func (s *fakeLikeStore) Toggle(userID uint, targetType model.LikeTarget, targetID uint) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.targets[targetType][targetID] {
		return false, 0, util.ErrNotFound
	}

	key := likeKey{userID, targetType, targetID}
	counter := likeKey{0, targetType, targetID}
	if s.likes[key] {
		delete(s.likes, key)
		if s.counts[counter] > 0 {
			s.counts[counter]--
		}
		return false, s.counts[counter], nil
	}
	s.likes[key] = true
	s.counts[counter]++
	return true, s.counts[counter], nil
}

func (s *fakeLikeStore) IsLiked(userID uint, targetType model.LikeTarget, targetID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likes[likeKey{userID, targetType, targetID}], nil
}

func (s *fakeLikeStore) ListLikedTargetIDs(userID uint, targetType model.LikeTarget) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for key := range s.likes {
		if key.user == userID && key.target == targetType {
			ids = append(ids, key.id)
		}
	}
	return ids, nil
}

// rowCount reports how many like rows exist for one (user, target) pair.
func (s *fakeLikeStore) rowCount(userID uint, targetType model.LikeTarget, targetID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.likes[likeKey{userID, targetType, targetID}] {
		return 1
	}
	return 0
}

type historyKey struct {
	user, resource uint
}

type fakeHistoryStore struct {
	mu        sync.Mutex
	nextID    uint
	histories map[historyKey]*model.ReadingHistory
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{histories: make(map[historyKey]*model.ReadingHistory)}
}

func (s *fakeHistoryStore) Find(userID, resourceID uint) (*model.ReadingHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[historyKey{userID, resourceID}]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *fakeHistoryStore) Save(history *model.ReadingHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if history.ID == 0 {
		s.nextID++
		history.ID = s.nextID
	}
	cp := *history
	s.histories[historyKey{history.UserID, history.ResourceID}] = &cp
	return nil
}

func (s *fakeHistoryStore) ListByUser(userID uint, bookmarkedOnly bool) ([]model.ReadingHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ReadingHistory
	for key, h := range s.histories {
		if key.user != userID {
			continue
		}
		if bookmarkedOnly && !h.IsBookmarked {
			continue
		}
		out = append(out, *h)
	}
	return out, nil
}

func (s *fakeHistoryStore) CountCompleted(userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for key, h := range s.histories {
		if key.user == userID && h.ProgressStatus == model.ProgressCompleted {
			total++
		}
	}
	return total, nil
}

type fakeNotificationStore struct {
	mu     sync.Mutex
	nextID uint
	rows   []*model.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{}
}

func (s *fakeNotificationStore) Create(notif *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	notif.ID = s.nextID
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}
	cp := *notif
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *fakeNotificationStore) ListRecent(userID uint, limit int) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.rows {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeNotificationStore) CountUnread(userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, n := range s.rows {
		if n.UserID == userID && !n.IsRead {
			total++
		}
	}
	return total, nil
}

func (s *fakeNotificationStore) MarkRead(userID, notifID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.ID == notifID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return util.ErrNotFound
}

func (s *fakeNotificationStore) MarkAllRead(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User)}
}

func (s *fakeUserStore) add(user model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		s.nextID++
		user.ID = s.nextID
	} else if user.ID > s.nextID {
		s.nextID = user.ID
	}
	if user.Status == "" {
		user.Status = model.UserActive
	}
	s.users[user.ID] = &user
	return &user
}

func (s *fakeUserStore) FindByID(id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) FindByEmail(email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (s *fakeUserStore) Create(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return util.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) Save(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return util.ErrNotFound
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) List(role model.UserRole, search string, page, pageSize int) ([]model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeUserStore) ListModerators() ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if (u.Role == model.SuperAdmin || u.Role == model.Manager) && u.Status == model.UserActive {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeActivityStore struct {
	mu   sync.Mutex
	logs []*model.UserActivityLog
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{}
}

func (s *fakeActivityStore) Log(log *model.UserActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *log
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *fakeActivityStore) ListByUser(userID uint, limit int) ([]model.UserActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserActivityLog
	for _, l := range s.logs {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeActivityStore) ListRecent(limit int) ([]model.UserActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserActivityLog
	for _, l := range s.logs {
		out = append(out, *l)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *fakeActivityStore) CountByTypeSince(activityType string, sinceDays int) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, l := range s.logs {
		counts[l.ActivityType]++
	}
	return counts, nil
}

type fakeLessonStore struct {
	mu      sync.Mutex
	nextID  uint
	lessons map[uint]*model.Lesson
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{lessons: make(map[uint]*model.Lesson)}
}

func (s *fakeLessonStore) FindByID(id uint) (*model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeLessonStore) Create(lesson *model.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	lesson.ID = s.nextID
	cp := *lesson
	s.lessons[lesson.ID] = &cp
	return nil
}

func (s *fakeLessonStore) Save(lesson *model.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[lesson.ID]; !ok {
		return util.ErrNotFound
	}
	cp := *lesson
	s.lessons[lesson.ID] = &cp
	return nil
}

func (s *fakeLessonStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[id]; !ok {
		return util.ErrNotFound
	}
	delete(s.lessons, id)
	return nil
}

func (s *fakeLessonStore) ListByUser(userID uint) ([]model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Lesson
	for _, l := range s.lessons {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeLessonStore) Stats() (total, likes, contributors int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	authors := make(map[uint]bool)
	for _, l := range s.lessons {
		total++
		likes += int64(l.LikeCount)
		authors[l.UserID] = true
	}
	return total, likes, int64(len(authors)), nil
}

func (s *fakeLessonStore) List(category, search string, page, pageSize int) ([]model.Lesson, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Lesson
	for _, l := range s.lessons {
		if category != "" && l.Category != category {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

type fakeDiscussionStore struct {
	mu          sync.Mutex
	nextID      uint
	nextPostID  uint
	discussions map[uint]*model.Discussion
	posts       map[uint]*model.DiscussionPost
}

func newFakeDiscussionStore() *fakeDiscussionStore {
	return &fakeDiscussionStore{
		discussions: make(map[uint]*model.Discussion),
		posts:       make(map[uint]*model.DiscussionPost),
	}
}

func (s *fakeDiscussionStore) FindByID(id uint) (*model.Discussion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.discussions[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *d
	cp.Posts = nil
	for _, p := range s.posts {
		if p.DiscussionID == id {
			cp.Posts = append(cp.Posts, *p)
		}
	}
	return &cp, nil
}

func (s *fakeDiscussionStore) Create(discussion *model.Discussion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	discussion.ID = s.nextID
	cp := *discussion
	s.discussions[discussion.ID] = &cp
	return nil
}

func (s *fakeDiscussionStore) Save(discussion *model.Discussion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discussions[discussion.ID]; !ok {
		return util.ErrNotFound
	}
	cp := *discussion
	cp.Posts = nil
	s.discussions[discussion.ID] = &cp
	return nil
}

func (s *fakeDiscussionStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discussions[id]; !ok {
		return util.ErrNotFound
	}
	delete(s.discussions, id)
	for pid, p := range s.posts {
		if p.DiscussionID == id {
			delete(s.posts, pid)
		}
	}
	return nil
}

func (s *fakeDiscussionStore) List(category, search string, page, pageSize int) ([]model.Discussion, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Discussion
	for _, d := range s.discussions {
		if category != "" && d.Category != category {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if page > 0 && pageSize > 0 && len(out) > pageSize {
		out = out[:pageSize]
	}
	return out, total, nil
}

func (s *fakeDiscussionStore) ListByUser(userID uint) ([]model.Discussion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Discussion
	for _, d := range s.discussions {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeDiscussionStore) AllTags() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	ids := make([]uint, 0, len(s.discussions))
	for id := range s.discussions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if tags := s.discussions[id].Tags; tags != "" {
			out = append(out, tags)
		}
	}
	return out, nil
}

func (s *fakeDiscussionStore) FindPost(id uint) (*model.DiscussionPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeDiscussionStore) CreatePost(post *model.DiscussionPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostID++
	post.ID = s.nextPostID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *fakeDiscussionStore) DeletePost(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return util.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

type fakeStatsStore struct {
	byStatus  map[model.ResourceStatus]int64
	byRole    map[model.UserRole]int64
	topRated  []model.Resource
	viewed    []model.Resource
	downloads []model.Resource
	bySubject map[string]int64
}

func (s *fakeStatsStore) CountResourcesByStatus() (map[model.ResourceStatus]int64, error) {
	return s.byStatus, nil
}

func (s *fakeStatsStore) CountUsersByRole() (map[model.UserRole]int64, error) {
	return s.byRole, nil
}

func (s *fakeStatsStore) TopRated(limit int) ([]model.Resource, error) {
	return s.topRated, nil
}

func (s *fakeStatsStore) MostViewed(limit int) ([]model.Resource, error) {
	return s.viewed, nil
}

func (s *fakeStatsStore) MostDownloaded(limit int) ([]model.Resource, error) {
	return s.downloads, nil
}

func (s *fakeStatsStore) UploadsBySubject() (map[string]int64, error) {
	return s.bySubject, nil
}

type fakeRecommendationStore struct {
	mu   sync.Mutex
	rows map[uint][]model.Recommendation
}

func newFakeRecommendationStore() *fakeRecommendationStore {
	return &fakeRecommendationStore{rows: make(map[uint][]model.Recommendation)}
}

func (s *fakeRecommendationStore) Replace(userID uint, recs []model.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[userID] = append([]model.Recommendation(nil), recs...)
	return nil
}

func (s *fakeRecommendationStore) ListByUser(userID uint) ([]model.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Recommendation(nil), s.rows[userID]...), nil
}
