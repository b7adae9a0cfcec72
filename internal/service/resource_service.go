package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
	"learnlink_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	storageKeyPrefix   = "ll/"
	deleteTxAttempts   = 3
	deleteRetryBackoff = 100 * time.Millisecond
)

// UnreadInvalidator drops a user's cached unread-notification count after
// notifications are written outside NotificationService.
type UnreadInvalidator interface {
	InvalidateUnread(userID uint)
}

// ResourceService owns the moderation lifecycle: submission, review,
// publication, download and deletion of teaching resources.
type ResourceService struct {
	Resources ResourceStore
	Users     UserStore
	Activity  ActivityStore
	Storage   *StorageService
	Unread    UnreadInvalidator
}

func NewResourceService(resources ResourceStore, users UserStore, activity ActivityStore, storage *StorageService, unread UnreadInvalidator) *ResourceService {
	return &ResourceService{
		Resources: resources,
		Users:     users,
		Activity:  activity,
		Storage:   storage,
		Unread:    unread,
	}
}

// SubmitResourceInput carries everything the upload form posts.
type SubmitResourceInput struct {
	Title        string
	Description  string
	Subject      string
	GradeLevel   string
	ResourceType string
	Quarter      string
	FileName     string
	FileSize     int64
	File         io.Reader
	SaveAsDraft  bool
}

// Submit stores the uploaded file and creates the resource as Draft or
// Pending. A draft only needs a title; everything else is required once the
// submission goes to review. A pending submission fans a review notification
// out to every moderator; a draft stays invisible to everyone but the
// uploader.
func (s *ResourceService) Submit(ctx context.Context, uploaderID uint, input SubmitResourceInput) (*model.Resource, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.Validationf("title is required")
	}
	if !input.SaveAsDraft {
		if strings.TrimSpace(input.Subject) == "" {
			return nil, util.Validationf("subject is required")
		}
		if strings.TrimSpace(input.GradeLevel) == "" {
			return nil, util.Validationf("grade level is required")
		}
		if strings.TrimSpace(input.ResourceType) == "" {
			return nil, util.Validationf("resource type is required")
		}
		if strings.TrimSpace(input.Description) == "" {
			return nil, util.Validationf("description is required")
		}
		if input.File == nil || input.FileName == "" {
			return nil, util.Validationf("a file is required")
		}
	}

	uploader, err := s.Users.FindByID(uploaderID)
	if err != nil {
		return nil, err
	}

	var key, format string
	if input.File != nil && input.FileName != "" {
		ext := strings.ToLower(filepath.Ext(input.FileName))
		key = newStorageKey(ext)
		format = strings.TrimPrefix(ext, ".")

		if err := s.Storage.Upload(ctx, key, input.File, input.FileSize, util.ContentTypeForFormat(ext)); err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	resource := &model.Resource{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Subject:      input.Subject,
		GradeLevel:   input.GradeLevel,
		ResourceType: input.ResourceType,
		Quarter:      input.Quarter,
		FileKey:      key,
		FileFormat:   format,
		FileSize:     input.FileSize,
		UploaderID:   uploaderID,
		Status:       model.StatusPending,
	}
	if input.SaveAsDraft {
		resource.Status = model.StatusDraft
	}

	log := &model.UserActivityLog{
		UserID:       uploaderID,
		ActivityType: model.ActivityUpload,
		TargetTitle:  resource.Title,
		ActivityDate: time.Now(),
	}

	var notifs []*model.Notification
	if resource.Status == model.StatusPending {
		notifs, err = s.reviewFanout(uploader, resource.Title)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Resources.CreateWithSideEffects(resource, log, notifs); err != nil {
		// best effort: don't leave an orphaned object behind
		if key != "" {
			if delErr := s.Storage.Delete(ctx, key); delErr != nil {
				logger.Log.Warn("orphaned upload cleanup failed", zap.String("key", key), zap.Error(delErr))
			}
		}
		return nil, err
	}

	s.invalidateUnread(notifs)
	logger.Log.Info("resource submitted",
		zap.Uint("resourceId", resource.ID),
		zap.Uint("uploaderId", uploaderID),
		zap.String("status", string(resource.Status)))
	return resource, nil
}

// UpdateResourceInput carries the editable fields. A nil pointer leaves the
// field unchanged.
type UpdateResourceInput struct {
	Title        *string
	Description  *string
	Subject      *string
	GradeLevel   *string
	ResourceType *string
	Quarter      *string
}

// Update edits resource metadata. When a contributor edits a published or
// rejected resource it returns to Pending for re-review; moderator edits
// keep the current status.
func (s *ResourceService) Update(ctx context.Context, actorID uint, actorRole model.UserRole, id uint, input UpdateResourceInput) (*model.Resource, error) {
	resource, err := s.Resources.FindByID(id)
	if err != nil {
		return nil, err
	}
	if resource.UploaderID != actorID && !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, util.Validationf("title is required")
		}
		resource.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		resource.Description = *input.Description
	}
	if input.Subject != nil {
		resource.Subject = *input.Subject
	}
	if input.GradeLevel != nil {
		resource.GradeLevel = *input.GradeLevel
	}
	if input.ResourceType != nil {
		resource.ResourceType = *input.ResourceType
	}
	if input.Quarter != nil {
		resource.Quarter = *input.Quarter
	}

	var notifs []*model.Notification
	if !isModerator(actorRole) && (resource.Status == model.StatusPublished || resource.Status == model.StatusRejected) {
		resource.Status = model.StatusPending
		resource.RejectionReason = nil
		uploader, err := s.Users.FindByID(resource.UploaderID)
		if err != nil {
			return nil, err
		}
		notifs, err = s.reviewFanout(uploader, resource.Title)
		if err != nil {
			return nil, err
		}
	}

	log := &model.UserActivityLog{
		UserID:       actorID,
		ActivityType: model.ActivityEdit,
		TargetTitle:  resource.Title,
		ResourceID:   &resource.ID,
		ActivityDate: time.Now(),
	}

	if err := s.Resources.SaveWithSideEffects(resource, log, notifs); err != nil {
		return nil, err
	}
	s.invalidateUnread(notifs)
	return resource, nil
}

// SubmitForReview moves the uploader's own draft into the review queue.
func (s *ResourceService) SubmitForReview(ctx context.Context, actorID uint, id uint) (*model.Resource, error) {
	resource, err := s.Resources.FindByID(id)
	if err != nil {
		return nil, err
	}
	if resource.UploaderID != actorID {
		return nil, util.ErrPermissionDenied
	}
	if resource.Status != model.StatusDraft {
		return nil, util.Validationf("only draft resources can be submitted for review")
	}

	uploader, err := s.Users.FindByID(actorID)
	if err != nil {
		return nil, err
	}
	notifs, err := s.reviewFanout(uploader, resource.Title)
	if err != nil {
		return nil, err
	}

	resource.Status = model.StatusPending
	log := &model.UserActivityLog{
		UserID:       actorID,
		ActivityType: model.ActivityUpload,
		TargetTitle:  resource.Title,
		ResourceID:   &resource.ID,
		ActivityDate: time.Now(),
	}
	if err := s.Resources.SaveWithSideEffects(resource, log, notifs); err != nil {
		return nil, err
	}
	s.invalidateUnread(notifs)
	return resource, nil
}

// Approve publishes a pending (or previously rejected) resource, clears any
// rejection reason and notifies the uploader once. A missing resource is a
// silent no-op so a double click from a second admin tab cannot fail.
func (s *ResourceService) Approve(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) (*model.Resource, error) {
	if !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	resource, err := s.Resources.FindByID(id)
	if util.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	resource.Status = model.StatusPublished
	resource.RejectionReason = nil

	link := resourceLink(resource.ID)
	notif := &model.Notification{
		UserID:     resource.UploaderID,
		Title:      "Resource Approved",
		Message:    fmt.Sprintf("Your resource '%s' has been approved and published.", resource.Title),
		Type:       model.NotifyApproved,
		Icon:       "bi-check-circle-fill",
		IconBg:     "#d1fae5",
		Link:       &link,
		ResourceID: &resource.ID,
	}
	log := &model.UserActivityLog{
		UserID:       actorID,
		ActivityType: model.ActivityApprove,
		TargetTitle:  resource.Title,
		ResourceID:   &resource.ID,
		ActivityDate: time.Now(),
	}

	if err := s.Resources.SaveWithSideEffects(resource, log, []*model.Notification{notif}); err != nil {
		return nil, err
	}
	s.invalidateUnread([]*model.Notification{notif})
	logger.Log.Info("resource approved", zap.Uint("resourceId", id), zap.Uint("reviewerId", actorID))
	return resource, nil
}

// Reject declines a pending resource. The reason is optional; when given it
// is stored on the resource and appended to the uploader's notification.
// Like Approve, rejecting a missing resource is a silent no-op.
func (s *ResourceService) Reject(ctx context.Context, actorID uint, actorRole model.UserRole, id uint, reason string) (*model.Resource, error) {
	if !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	resource, err := s.Resources.FindByID(id)
	if util.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	resource.Status = model.StatusRejected
	resource.RejectionReason = nil
	message := fmt.Sprintf("Your resource '%s' was not approved.", resource.Title)
	if reason = strings.TrimSpace(reason); reason != "" {
		resource.RejectionReason = &reason
		message += " Reason: " + reason
	}

	link := resourceLink(resource.ID)
	notif := &model.Notification{
		UserID:     resource.UploaderID,
		Title:      "Resource Rejected",
		Message:    message,
		Type:       model.NotifyRejected,
		Icon:       "bi-x-circle-fill",
		IconBg:     "#fee2e2",
		Link:       &link,
		ResourceID: &resource.ID,
	}
	log := &model.UserActivityLog{
		UserID:       actorID,
		ActivityType: model.ActivityReject,
		TargetTitle:  resource.Title,
		ResourceID:   &resource.ID,
		ActivityDate: time.Now(),
	}

	if err := s.Resources.SaveWithSideEffects(resource, log, []*model.Notification{notif}); err != nil {
		return nil, err
	}
	s.invalidateUnread([]*model.Notification{notif})
	logger.Log.Info("resource rejected", zap.Uint("resourceId", id), zap.Uint("reviewerId", actorID))
	return resource, nil
}

// Get returns one resource, enforcing visibility: unpublished resources are
// only visible to their uploader and to moderators.
func (s *ResourceService) Get(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) (*model.Resource, error) {
	resource, err := s.Resources.FindByID(id)
	if err != nil {
		return nil, err
	}
	if resource.Status != model.StatusPublished && resource.UploaderID != actorID && !isModerator(actorRole) {
		return nil, util.ErrNotFound
	}
	return resource, nil
}

// List applies the caller's visibility to the requested filter: students see
// only published resources, contributors additionally their own in any
// status, moderators see everything the filter asks for.
func (s *ResourceService) List(ctx context.Context, actorID uint, actorRole model.UserRole, filter ResourceFilter) ([]model.Resource, int64, error) {
	if !isModerator(actorRole) {
		if filter.UploaderID == actorID && actorID != 0 {
			// "my uploads" view: any status of your own
		} else {
			filter.Status = model.StatusPublished
		}
	}
	return s.Resources.List(filter)
}

// ListPending returns the moderation queue.
func (s *ResourceService) ListPending(ctx context.Context, actorRole model.UserRole, page, pageSize int) ([]model.Resource, int64, error) {
	if !isModerator(actorRole) {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.Resources.List(ResourceFilter{Status: model.StatusPending, Page: page, PageSize: pageSize})
}

// Download streams the stored file and bumps the download counter.
func (s *ResourceService) Download(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) (*model.Resource, []byte, error) {
	resource, content, err := s.fetchFile(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, nil, err
	}

	if err := s.Resources.IncrementDownload(id); err != nil {
		logger.Log.Warn("download count update failed", zap.Uint("resourceId", id), zap.Error(err))
	}
	if err := s.Activity.Log(&model.UserActivityLog{
		UserID:       actorID,
		ActivityType: model.ActivityDownload,
		TargetTitle:  resource.Title,
		ResourceID:   &resource.ID,
		ActivityDate: time.Now(),
	}); err != nil {
		logger.Log.Warn("activity log failed", zap.Error(err))
	}

	return resource, content, nil
}

// Preview streams the stored file for in-browser viewing without touching
// the download counter or the activity log.
func (s *ResourceService) Preview(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) (*model.Resource, []byte, error) {
	return s.fetchFile(ctx, actorID, actorRole, id)
}

func (s *ResourceService) fetchFile(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) (*model.Resource, []byte, error) {
	resource, err := s.Get(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, nil, err
	}
	if resource.FileKey == "" {
		return nil, nil, util.ErrNoFileAttached
	}

	content, err := s.Storage.Fetch(ctx, resource.FileKey)
	if err != nil {
		return nil, nil, err
	}
	return resource, content, nil
}

// BatchDelete removes resources with all their dependent rows in one
// transaction, retrying transient failures, then destroys the stored files
// best-effort after the commit. Only a super admin may delete other users'
// resources; everyone else is silently filtered down to their own rows, and
// missing ids are skipped, so a partial batch still succeeds. Returns how
// many resources were deleted.
func (s *ResourceService) BatchDelete(ctx context.Context, actorID uint, actorRole model.UserRole, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, util.Validationf("no resources selected")
	}

	var resources []*model.Resource
	var deleteIDs []uint
	var logs []*model.UserActivityLog
	for _, id := range ids {
		resource, err := s.Resources.FindByID(id)
		if util.IsNotFound(err) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if actorRole != model.SuperAdmin && resource.UploaderID != actorID {
			continue
		}
		resources = append(resources, resource)
		deleteIDs = append(deleteIDs, resource.ID)
		logs = append(logs, &model.UserActivityLog{
			UserID:       actorID,
			ActivityType: model.ActivityDelete,
			TargetTitle:  resource.Title,
			ActivityDate: time.Now(),
		})
	}
	if len(deleteIDs) == 0 {
		return 0, util.Validationf("no valid resources found to delete")
	}

	var err error
	for attempt := 1; attempt <= deleteTxAttempts; attempt++ {
		err = s.Resources.DeleteCascade(deleteIDs, logs)
		if err == nil {
			break
		}
		logger.Log.Warn("batch delete attempt failed",
			zap.Int("attempt", attempt),
			zap.Uints("ids", deleteIDs),
			zap.Error(err))
		if attempt < deleteTxAttempts {
			time.Sleep(time.Duration(attempt) * deleteRetryBackoff)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("delete resources: %w", err)
	}

	for _, resource := range resources {
		if resource.FileKey == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, resource.FileKey); err != nil {
			logger.Log.Warn("stored file cleanup failed",
				zap.Uint("resourceId", resource.ID),
				zap.String("key", resource.FileKey),
				zap.Error(err))
		}
	}

	logger.Log.Info("resources deleted", zap.Uints("ids", deleteIDs), zap.Uint("actorId", actorID))
	return len(deleteIDs), nil
}

func (s *ResourceService) reviewFanout(uploader *model.User, title string) ([]*model.Notification, error) {
	moderators, err := s.Users.ListModerators()
	if err != nil {
		return nil, err
	}
	notifs := make([]*model.Notification, 0, len(moderators))
	for i := range moderators {
		if moderators[i].ID == uploader.ID {
			continue
		}
		notifs = append(notifs, &model.Notification{
			UserID:  moderators[i].ID,
			Title:   "New resource pending review",
			Message: fmt.Sprintf("%s uploaded '%s' for review.", uploader.Name, title),
			Type:    model.NotifyUpload,
			Icon:    "bi-cloud-arrow-up",
			IconBg:  "#dbeafe",
		})
	}
	return notifs, nil
}

func (s *ResourceService) invalidateUnread(notifs []*model.Notification) {
	if s.Unread == nil {
		return
	}
	for _, n := range notifs {
		s.Unread.InvalidateUnread(n.UserID)
	}
}

func isModerator(role model.UserRole) bool {
	return role == model.SuperAdmin || role == model.Manager
}

func newStorageKey(ext string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return storageKeyPrefix + id + ext
}

func resourceLink(id uint) string {
	return fmt.Sprintf("/resources/%d", id)
}
