package notification

import (
	"context"
	"time"

	"engagehub/pkg/changefeed"
	"engagehub/pkg/db/option"
	"engagehub/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultListLimit = 10

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	feed *changefeed.Publisher

	notifications repository.Repository[Notification]
}

type ServiceParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
	Feed *changefeed.Publisher `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		feed: p.Feed,

		notifications: repository.ProvideStore[Notification](p.DB),
	}
}

// Notify inserts a notification for the user and publishes it on the
// change feed so an open bell updates without polling.
func (s *Service) Notify(ctx context.Context, userID, title, message string) (*Notification, error) {
	record := &Notification{
		ID:        s.node.Generate().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.notifications.Create(ctx, record); err != nil {
		zap.L().Error("failed to create notification",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	if s.feed != nil {
		s.feed.Publish(ctx, changefeed.TableNotifications, changefeed.OpInsert, record)
	}
	return record, nil
}

// List returns the user's newest notifications.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	return s.notifications.Find(ctx, &Notification{UserID: userID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "DESC"}),
		option.WithLimit(limit),
	)
}

// MarkAllRead flags every unread notification of the user.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
