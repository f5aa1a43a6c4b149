package campaign

import (
	"context"
	"strings"
	"time"

	"engagehub/pkg/changefeed"
	"engagehub/pkg/db/option"
	"engagehub/pkg/db/pagination"
	"engagehub/pkg/errutil"
	"engagehub/pkg/repository"
	"engagehub/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	seq  sequence.Generator
	feed *changefeed.Publisher

	campaigns repository.Repository[Campaign]
}

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Node     *snowflake.Node
	Sequence sequence.Generator    `optional:"true"`
	Feed     *changefeed.Publisher `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		seq:  p.Sequence,
		feed: p.Feed,

		campaigns: repository.ProvideStore[Campaign](p.DB),
	}
}

type CreateRequest struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Points         int64          `json:"points"`
	SubmissionType string         `json:"submission_type"`
	EndAt          time.Time      `json:"end_at"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
}

func (s *Service) Create(ctx context.Context, brandID, brandName string, req CreateRequest) (*Campaign, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, errutil.ValidationFailed("title and description are required")
	}
	if req.Points <= 0 {
		return nil, errutil.ValidationFailed("points must be positive")
	}
	if !validSubmissionType(req.SubmissionType) {
		return nil, errutil.ValidationFailed("submission_type must be photo, video or text")
	}
	if req.EndAt.Before(time.Now()) {
		return nil, errutil.ValidationFailed("end_at must be in the future")
	}

	code, err := s.nextCode(ctx)
	if err != nil {
		zap.L().Error("failed to generate campaign code", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	record := &Campaign{
		ID:             s.node.Generate().String(),
		Code:           code,
		BrandID:        brandID,
		BrandName:      brandName,
		Title:          req.Title,
		Description:    req.Description,
		Points:         req.Points,
		SubmissionType: req.SubmissionType,
		EndAt:          req.EndAt,
		Status:         StatusActive,
		Metadata:       req.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.campaigns.Create(ctx, record); err != nil {
		zap.L().Error("failed to create campaign", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, changefeed.OpInsert, record)
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Campaign, error) {
	record, err := s.campaigns.FindOne(ctx, &Campaign{ID: id})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errutil.NotFound("campaign not found")
	}
	return record, nil
}

// ListActive returns one page of open campaigns, newest first. The
// cursor is the opaque value handed out with the previous page.
func (s *Service) ListActive(ctx context.Context, cursor string, limit int) ([]*Campaign, *pagination.PageInfo, error) {
	if limit <= 0 || limit > 250 {
		limit = 10
	}

	q := s.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Order("created_at DESC").
		Limit(limit + 1)

	if cursor != "" {
		cur, err := pagination.DecodeCursor(cursor)
		if err != nil {
			return nil, nil, errutil.BadRequest("invalid cursor", errutil.WithErr(err))
		}
		ts, err := time.Parse(time.RFC3339Nano, cur.CreatedAt)
		if err != nil {
			return nil, nil, errutil.BadRequest("invalid cursor", errutil.WithErr(err))
		}
		q = q.Where("created_at < ?", ts)
	}

	var records []*Campaign
	if err := q.Find(&records).Error; err != nil {
		return nil, nil, err
	}

	info := pagination.BuildCursorPageInfo(records, limit, func(c *Campaign) string {
		enc, err := pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
			ID:        c.ID,
		})
		if err != nil {
			return ""
		}
		return enc
	})

	if len(records) > limit {
		records = records[:limit]
	}

	return records, info, nil
}

func (s *Service) ListByBrand(ctx context.Context, brandID string) ([]*Campaign, error) {
	return s.campaigns.Find(ctx, &Campaign{BrandID: brandID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "DESC"}),
	)
}

// Close ends a campaign early. Only its owning brand may close it and
// only while it is still active.
func (s *Service) Close(ctx context.Context, brandID, id string) (*Campaign, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.BrandID != brandID {
		return nil, errutil.Forbidden("campaign belongs to another brand")
	}
	if record.Status != StatusActive {
		return nil, errutil.Conflict("campaign is not active")
	}

	if err := s.campaigns.Update(ctx, record.ID, map[string]any{
		"status":     StatusClosed,
		"updated_at": time.Now(),
	}); err != nil {
		zap.L().Error("failed to close campaign", zap.Error(err))
		return nil, err
	}

	record.Status = StatusClosed
	s.publish(ctx, changefeed.OpUpdate, record)
	return record, nil
}

// ExpireDue flips active campaigns whose end date has passed. Returns
// the number of campaigns expired.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&Campaign{}).
		Where("status = ? AND end_at < ?", StatusActive, time.Now()).
		Updates(map[string]any{
			"status":     StatusExpired,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		zap.L().Info("expired campaigns past their end date", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// IncrementApplicants bumps the applicant counter inside the caller's
// transaction, alongside the submission insert.
func (s *Service) IncrementApplicants(ctx context.Context, tx *gorm.DB, id string) error {
	return s.campaigns.WithTrx(tx).Update(ctx, id, map[string]any{
		"applicant_count": gorm.Expr("applicant_count + 1"),
		"updated_at":      time.Now(),
	})
}

func (s *Service) nextCode(ctx context.Context) (string, error) {
	if s.seq == nil {
		return s.node.Generate().String(), nil
	}
	return s.seq.NextCampaignCode(ctx)
}

func (s *Service) publish(ctx context.Context, op changefeed.Op, record *Campaign) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, changefeed.TableCampaigns, op, record)
}
