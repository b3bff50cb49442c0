// Package notify creates in-app notification rows and fans out push
// deliveries for review interactions.
package notify

import (
	"errors"

	"github.com/mompick/backend/internal/database"
	"github.com/mompick/backend/internal/logger"
	"github.com/mompick/backend/internal/metrics"
	"github.com/mompick/backend/internal/models"
	"github.com/mompick/backend/internal/push"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier handles notification side effects of helpful marks.
// All methods are best-effort: a notification failure never fails the
// operation that triggered it.
type Notifier struct {
	sender *push.Sender
}

// NewNotifier creates a notifier. sender may be nil, which disables push.
func NewNotifier(sender *push.Sender) *Notifier {
	return &Notifier{sender: sender}
}

// ReviewLiked records that `from` found a review helpful and notifies the
// review's author. Re-marking after an earlier unmark does not create a
// duplicate row.
func (n *Notifier) ReviewLiked(from *models.Profile, review *models.Review, facilityName string) {
	if from.ID == review.ProfileID {
		return
	}

	var setting models.NotificationSetting
	err := database.DB.Where("profile_id = ?", review.ProfileID).First(&setting).Error
	hasSetting := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Failed to load notification settings",
			zap.Error(err), logger.WithProfileID(review.ProfileID))
	}
	if hasSetting && !setting.ReviewLikeEnabled {
		return
	}

	// Suppress duplicates from mark/unmark/mark cycles. Only an unread row
	// suppresses: once the author has seen the notification, a fresh mark
	// notifies again.
	var existing models.Notification
	err = database.DB.Where(
		"type = ? AND review_id = ? AND from_profile_id = ? AND to_profile_id = ? AND is_read = false",
		models.NotificationReviewLike, review.ID, from.ID, review.ProfileID,
	).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Failed to check existing notification", zap.Error(err))
		return
	}

	reviewID := review.ID
	notification := models.Notification{
		Type:          models.NotificationReviewLike,
		ReviewID:      &reviewID,
		FromProfileID: from.ID,
		ToProfileID:   review.ProfileID,
		Payload: &models.NotificationPayload{
			FacilityName: facilityName,
			FromName:     from.DisplayName(),
			FromImageURL: from.ProfileImageURL,
		},
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		logger.Warn("Failed to create notification",
			zap.Error(err), logger.WithReviewID(review.ID))
		return
	}
	metrics.Get().NotificationsCreated.Inc()

	if hasSetting && !setting.PushEnabled {
		return
	}

	// Push delivery off the request path
	go n.sender.SendToProfile(review.ProfileID,
		"후기에 도움돼요가 달렸어요",
		from.DisplayName()+"님이 회원님의 후기를 도움된다고 했어요",
		map[string]string{
			"type":      string(models.NotificationReviewLike),
			"review_id": review.ID,
		})
}

// ReviewLikeRemoved deletes the notification created by a helpful mark.
// Matching is by (review, from, to); there is nothing to do when the row is
// already gone.
func (n *Notifier) ReviewLikeRemoved(fromProfileID string, review *models.Review) {
	err := database.DB.Where(
		"type = ? AND review_id = ? AND from_profile_id = ? AND to_profile_id = ?",
		models.NotificationReviewLike, review.ID, fromProfileID, review.ProfileID,
	).Delete(&models.Notification{}).Error
	if err != nil {
		logger.Warn("Failed to remove notification",
			zap.Error(err), logger.WithReviewID(review.ID))
	}
}
