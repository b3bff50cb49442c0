// Package push delivers FCM notifications to registered device tokens.
package push

import (
	"context"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/mompick/backend/internal/database"
	"github.com/mompick/backend/internal/logger"
	"github.com/mompick/backend/internal/metrics"
	"github.com/mompick/backend/internal/models"
	"go.uber.org/zap"
)

// Sender sends push messages via Firebase Cloud Messaging.
// A nil Sender is valid and drops every message, so push stays optional.
type Sender struct {
	client *messaging.Client
}

// NewSender initializes the Firebase app and messaging client
func NewSender(ctx context.Context, credentialsPath string) (*Sender, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}

	logger.Log.Info("Firebase messaging client initialized")
	return &Sender{client: client}, nil
}

// SendToProfile delivers a notification to every registered token of a
// profile. Invalid tokens are removed as they are discovered. Failures are
// logged, never returned: push delivery is best-effort by contract.
func (s *Sender) SendToProfile(profileID, title, body string, data map[string]string) {
	if s == nil || s.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var tokens []models.FCMToken
	if err := database.DB.Where("profile_id = ?", profileID).Find(&tokens).Error; err != nil {
		logger.Warn("Failed to load push tokens",
			zap.Error(err), logger.WithProfileID(profileID))
		return
	}
	if len(tokens) == 0 {
		return
	}

	for _, t := range tokens {
		msg := &messaging.Message{
			Token: t.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}

		if _, err := s.client.Send(ctx, msg); err != nil {
			metrics.Get().PushSendFailures.Inc()
			if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
				// Token rotated or uninstalled app; drop it
				database.DB.Where("id = ?", t.ID).Delete(&models.FCMToken{})
				logger.InfoWithFields("Removed stale push token",
					logger.WithProfileID(profileID))
				continue
			}
			logger.Warn("Push send failed",
				zap.Error(err), logger.WithProfileID(profileID))
		}
	}
}
