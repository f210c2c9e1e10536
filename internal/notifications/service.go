package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cravecart/cravecart-backend/pkg/db/models"
	pkgerrors "github.com/cravecart/cravecart-backend/pkg/errors"
	"github.com/cravecart/cravecart-backend/pkg/fcm"
	"github.com/cravecart/cravecart-backend/pkg/logger"
)

// Service persists in-app notifications and pushes them to registered
// devices. It satisfies the Notifier interface the order flows depend on.
type Service interface {
	NotifyOrderEvent(ctx context.Context, userID, orderID uuid.UUID, kind, title, body string)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]NotificationDTO, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	RegisterDevice(ctx context.Context, userID uuid.UUID, req RegisterDeviceRequest) error
	UnregisterDevice(ctx context.Context, userID uuid.UUID, token string) error
}

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UpsertDeviceToken(ctx context.Context, token *models.DeviceToken) error
	DeleteDeviceToken(ctx context.Context, userID uuid.UUID, token string) error
	ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error)
}

type service struct {
	repo   repository
	pusher fcm.Sender
	logg   *logger.Logger
}

// NewService builds the notification service. The pusher is optional;
// without it notifications stay in-app only.
func NewService(repo repository, pusher fcm.Sender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, pusher: pusher, logg: logg}, nil
}

// NotifyOrderEvent records the notification and pushes it to the user's
// devices. Nothing here fails the calling order flow; errors are logged.
func (s *service) NotifyOrderEvent(ctx context.Context, userID, orderID uuid.UUID, kind, title, body string) {
	notification := &models.Notification{
		UserID:  userID,
		Title:   title,
		Body:    body,
		Kind:    kind,
		OrderID: &orderID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logg.Error(ctx, "persisting notification", err)
		return
	}
	s.push(ctx, userID, title, body, map[string]string{
		"kind":     kind,
		"order_id": orderID.String(),
	})
}

func (s *service) push(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	if s.pusher == nil {
		return
	}
	tokens, err := s.repo.ListDeviceTokens(ctx, userID)
	if err != nil {
		s.logg.Warn(ctx, "loading device tokens for push")
		return
	}
	for _, token := range tokens {
		msg := fcm.Message{Token: token.Token, Title: title, Body: body, Data: data}
		if err := s.pusher.Send(ctx, msg); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "device_token_id", token.ID.String()), "push delivery failed")
		}
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]NotificationDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}
	out := make([]NotificationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notifications read")
	}
	return nil
}

func (s *service) RegisterDevice(ctx context.Context, userID uuid.UUID, req RegisterDeviceRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "device token is required")
	}
	record := &models.DeviceToken{
		UserID:   userID,
		Token:    token,
		Platform: strings.TrimSpace(strings.ToLower(req.Platform)),
	}
	if err := s.repo.UpsertDeviceToken(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register device token")
	}
	return nil
}

func (s *service) UnregisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "device token is required")
	}
	if err := s.repo.DeleteDeviceToken(ctx, userID, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unregister device token")
	}
	return nil
}
