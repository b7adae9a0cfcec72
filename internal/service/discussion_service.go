package service

import (
	"context"
	"sort"
	"strings"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
	"learnlink_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	popularTagLimit        = 15
	similarDiscussionLimit = 3
)

// DiscussionService manages discussion threads, replies and best answers.
type DiscussionService struct {
	Discussions DiscussionStore
	Likes       LikeStore
	Notify      *NotificationService
}

func NewDiscussionService(discussions DiscussionStore, likes LikeStore, notify *NotificationService) *DiscussionService {
	return &DiscussionService{Discussions: discussions, Likes: likes, Notify: notify}
}

// DiscussionView is a thread decorated with the caller's like state.
type DiscussionView struct {
	model.Discussion
	Liked bool `json:"liked"`
}

// DiscussionDetail is the full thread page payload: the thread, which of its
// replies the caller has liked, and a handful of threads from the same
// category.
type DiscussionDetail struct {
	DiscussionView
	LikedReplyIDs []uint             `json:"likedReplyIds"`
	Similar       []model.Discussion `json:"similar"`
}

type DiscussionInput struct {
	Title    string `json:"title" binding:"required,max=100"`
	Content  string `json:"content" binding:"required,max=2000"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Tags     string `json:"tags"`
}

// Create opens a new discussion thread.
func (s *DiscussionService) Create(ctx context.Context, userID uint, input DiscussionInput) (*model.Discussion, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, util.Validationf("title and content are required")
	}

	discussion := &model.Discussion{
		UserID:   userID,
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		Category: input.Category,
		Type:     input.Type,
		Tags:     input.Tags,
		Status:   "Open",
	}
	if discussion.Type == "" {
		discussion.Type = "Question"
	}
	if err := s.Discussions.Create(discussion); err != nil {
		return nil, err
	}
	return discussion, nil
}

// Get returns one discussion with its posts, the caller's like state on the
// thread and its replies, and similar threads from the same category.
func (s *DiscussionService) Get(ctx context.Context, userID, id uint) (*DiscussionDetail, error) {
	discussion, err := s.Discussions.FindByID(id)
	if err != nil {
		return nil, err
	}

	detail := &DiscussionDetail{DiscussionView: DiscussionView{Discussion: *discussion}}

	if userID != 0 {
		if detail.Liked, err = s.Likes.IsLiked(userID, model.TargetDiscussion, id); err != nil {
			return nil, err
		}
		likedReplies, err := s.Likes.ListLikedTargetIDs(userID, model.TargetReply)
		if err != nil {
			return nil, err
		}
		inThread := make(map[uint]bool, len(discussion.Posts))
		for _, post := range discussion.Posts {
			inThread[post.ID] = true
		}
		for _, postID := range likedReplies {
			if inThread[postID] {
				detail.LikedReplyIDs = append(detail.LikedReplyIDs, postID)
			}
		}
	}

	similar, _, err := s.Discussions.List(discussion.Category, "", 1, similarDiscussionLimit+1)
	if err != nil {
		return nil, err
	}
	for _, d := range similar {
		if d.ID == discussion.ID || len(detail.Similar) >= similarDiscussionLimit {
			continue
		}
		detail.Similar = append(detail.Similar, d)
	}

	return detail, nil
}

// List pages through discussions, marking the ones the caller has liked.
func (s *DiscussionService) List(ctx context.Context, userID uint, category, search string, page, pageSize int) ([]DiscussionView, int64, error) {
	discussions, total, err := s.Discussions.List(category, search, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	liked := make(map[uint]bool)
	if userID != 0 {
		ids, err := s.Likes.ListLikedTargetIDs(userID, model.TargetDiscussion)
		if err != nil {
			return nil, 0, err
		}
		for _, id := range ids {
			liked[id] = true
		}
	}

	views := make([]DiscussionView, 0, len(discussions))
	for _, d := range discussions {
		views = append(views, DiscussionView{Discussion: d, Liked: liked[d.ID]})
	}
	return views, total, nil
}

// PopularTags counts tag usage across every thread and returns the most
// used ones.
func (s *DiscussionService) PopularTags(ctx context.Context) ([]string, error) {
	rows, err := s.Discussions.AllTags()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, csv := range rows {
		for _, tag := range strings.Split(csv, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				counts[tag]++
			}
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > popularTagLimit {
		tags = tags[:popularTagLimit]
	}
	return tags, nil
}

// Update edits a thread. Only the author or a moderator may edit; tags are
// normalized to a comma-separated list with whitespace trimmed.
func (s *DiscussionService) Update(ctx context.Context, actorID uint, actorRole model.UserRole, id uint, title, content, dtype, tags *string) (*model.Discussion, error) {
	discussion, err := s.Discussions.FindByID(id)
	if err != nil {
		return nil, err
	}
	if discussion.UserID != actorID && !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, util.Validationf("title is required")
		}
		discussion.Title = strings.TrimSpace(*title)
	}
	if content != nil {
		discussion.Content = *content
	}
	if dtype != nil {
		discussion.Type = *dtype
	}
	if tags != nil {
		discussion.Tags = normalizeTags(*tags)
	}

	if err := s.Discussions.Save(discussion); err != nil {
		return nil, err
	}
	return discussion, nil
}

func normalizeTags(tags string) string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return strings.Join(out, ", ")
}

// Delete removes a thread and all its posts. Only the author or a moderator
// may delete.
func (s *DiscussionService) Delete(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) error {
	discussion, err := s.Discussions.FindByID(id)
	if err != nil {
		return err
	}
	if discussion.UserID != actorID && !isModerator(actorRole) {
		return util.ErrPermissionDenied
	}
	return s.Discussions.Delete(id)
}

// Reply appends a post to an open discussion and notifies the thread owner.
func (s *DiscussionService) Reply(ctx context.Context, userID, discussionID uint, content string) (*model.DiscussionPost, error) {
	if strings.TrimSpace(content) == "" {
		return nil, util.Validationf("reply content is required")
	}

	discussion, err := s.Discussions.FindByID(discussionID)
	if err != nil {
		return nil, err
	}
	if discussion.Status == "Closed" {
		return nil, util.Validationf("this discussion is closed")
	}

	post := &model.DiscussionPost{
		DiscussionID: discussionID,
		UserID:       userID,
		Content:      content,
	}
	if err := s.Discussions.CreatePost(post); err != nil {
		return nil, err
	}

	if s.Notify != nil && discussion.UserID != userID {
		if err := s.Notify.Notify(ctx, &model.Notification{
			UserID:  discussion.UserID,
			Title:   "New reply",
			Message: "Someone replied to your discussion '" + discussion.Title + "'.",
			Type:    model.NotifySystem,
			Icon:    "bi-chat-dots",
		}); err != nil {
			logger.Log.Warn("reply notification failed", zap.Uint("discussionId", discussionID), zap.Error(err))
		}
	}
	return post, nil
}

// DeleteReply removes one post. Only the post author or a moderator may
// delete; deleting the current best answer clears the marker.
func (s *DiscussionService) DeleteReply(ctx context.Context, actorID uint, actorRole model.UserRole, postID uint) error {
	post, err := s.Discussions.FindPost(postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID && !isModerator(actorRole) {
		return util.ErrPermissionDenied
	}

	discussion, err := s.Discussions.FindByID(post.DiscussionID)
	if err == nil && discussion.BestAnswerPostID != nil && *discussion.BestAnswerPostID == postID {
		discussion.BestAnswerPostID = nil
		if err := s.Discussions.Save(discussion); err != nil {
			return err
		}
	}
	return s.Discussions.DeletePost(postID)
}

// MarkBestAnswer marks one reply as the thread's best answer. Only the
// thread owner or a moderator may mark; re-marking moves the marker so a
// thread never has two winners.
func (s *DiscussionService) MarkBestAnswer(ctx context.Context, actorID uint, actorRole model.UserRole, discussionID, postID uint) (*model.Discussion, error) {
	discussion, err := s.Discussions.FindByID(discussionID)
	if err != nil {
		return nil, err
	}
	if discussion.UserID != actorID && !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	post, err := s.Discussions.FindPost(postID)
	if err != nil {
		return nil, err
	}
	if post.DiscussionID != discussionID {
		return nil, util.Validationf("reply does not belong to this discussion")
	}

	discussion.BestAnswerPostID = &postID
	discussion.Status = "Answered"
	if err := s.Discussions.Save(discussion); err != nil {
		return nil, err
	}

	if s.Notify != nil && post.UserID != actorID {
		if err := s.Notify.Notify(ctx, &model.Notification{
			UserID:  post.UserID,
			Title:   "Best answer",
			Message: "Your reply on '" + discussion.Title + "' was marked as the best answer.",
			Type:    model.NotifySystem,
			Icon:    "bi-award-fill",
			IconBg:  "#fef3c7",
		}); err != nil {
			logger.Log.Warn("best answer notification failed", zap.Uint("postId", postID), zap.Error(err))
		}
	}
	return discussion, nil
}
