package service

import (
	"context"
	"fmt"
	"log/slog"

	"trove/internal/models"
	"trove/internal/repository"
)

// NotificationService stores and serves per-user notifications. It implements
// Notifier for the claim lifecycle; delivery failures are logged and dropped.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, userRepo: userRepo}
}

// ClaimCreated notifies the item's finder that a new claim was submitted.
func (s *NotificationService) ClaimCreated(ctx context.Context, claim *models.Claim, finderID uint) {
	s.store(ctx, &models.Notification{
		UserID:  finderID,
		Message: "A new claim was submitted on your found item",
		ClaimID: &claim.ID,
		ItemID:  &claim.ItemID,
	})
}

// ClaimForwarded notifies the claimant that their claim went to admin review.
func (s *NotificationService) ClaimForwarded(ctx context.Context, claim *models.Claim) {
	s.store(ctx, &models.Notification{
		UserID:  claim.UserID,
		Message: "Your claim was forwarded to an administrator for review",
		ClaimID: &claim.ID,
		ItemID:  &claim.ItemID,
	})
}

// ClaimResolved notifies the claimant of a final decision on their claim.
func (s *NotificationService) ClaimResolved(ctx context.Context, claimID, claimantID uint, status models.ClaimStatus, reason string) {
	message := "Your claim was " + string(status)
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	s.store(ctx, &models.Notification{
		UserID:  claimantID,
		Message: message,
		ClaimID: &claimID,
	})
}

func (s *NotificationService) store(ctx context.Context, notification *models.Notification) {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		slog.WarnContext(ctx, "failed to store notification",
			"user_id", notification.UserID,
			"error", err,
		)
	}
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead marks a notification read. Only the recipient may mark it.
func (s *NotificationService) MarkRead(ctx context.Context, actorID, notificationID uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != actorID {
		return models.NewUnauthorizedError("You are not authorized to modify this notification")
	}
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

// Delete removes a notification. Only the recipient may delete it.
func (s *NotificationService) Delete(ctx context.Context, actorID, notificationID uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != actorID {
		return models.NewUnauthorizedError("You are not authorized to delete this notification")
	}
	return s.notificationRepo.Delete(ctx, notificationID)
}
