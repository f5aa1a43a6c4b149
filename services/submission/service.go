package submission

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"engagehub/pkg/changefeed"
	"engagehub/pkg/db/option"
	"engagehub/pkg/errutil"
	"engagehub/pkg/repository"
	"engagehub/pkg/sequence"
	"engagehub/pkg/task"
	"engagehub/pkg/taskname"
	"engagehub/services/campaign"
	"engagehub/services/engagement"
	"engagehub/services/user"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserStore is the slice of the user service submission creation needs.
type UserStore interface {
	LockedUser(ctx context.Context, tx *gorm.DB, userID string) (*user.User, error)
	RecordSubmissionStreak(ctx context.Context, tx *gorm.DB, userID string, streak int, last time.Time) error
}

// CampaignStore is the slice of the campaign service this package needs.
type CampaignStore interface {
	Get(ctx context.Context, id string) (*campaign.Campaign, error)
	IncrementApplicants(ctx context.Context, tx *gorm.DB, id string) error
	ListByBrand(ctx context.Context, brandID string) ([]*campaign.Campaign, error)
}

type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	seq      sequence.Generator
	feed     *changefeed.Publisher
	enqueuer task.Enqueuer

	users     UserStore
	campaigns CampaignStore

	submissions repository.Repository[Submission]
}

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Node     *snowflake.Node
	Sequence sequence.Generator    `optional:"true"`
	Feed     *changefeed.Publisher `optional:"true"`
	Enqueuer task.Enqueuer         `optional:"true"`

	Users     *user.Service
	Campaigns *campaign.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		seq:      p.Sequence,
		feed:     p.Feed,
		enqueuer: p.Enqueuer,

		users:     p.Users,
		campaigns: p.Campaigns,

		submissions: repository.ProvideStore[Submission](p.DB),
	}
}

type CreateRequest struct {
	Content       string      `json:"content"`
	Links         SocialLinks `json:"links"`
	AttachmentURL string      `json:"attachment_url,omitempty"`
}

// Create files a new pending submission. The streak advance, the
// submission insert and the applicant counter bump commit in a single
// transaction holding the user row lock, so concurrent submissions on
// the same day cannot double-credit the streak.
func (s *Service) Create(ctx context.Context, userID, campaignID string, req CreateRequest) (*Submission, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if strings.TrimSpace(req.Content) == "" {
		return nil, errutil.ValidationFailed("content is required")
	}
	if req.Links.Empty() {
		return nil, errutil.ValidationFailed("at least one social link is required")
	}

	cmp, err := s.campaigns.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if cmp.Status != campaign.StatusActive || cmp.EndAt.Before(time.Now()) {
		return nil, errutil.FailedPrecondition("campaign is not open for submissions")
	}

	code, err := s.nextCode(ctx)
	if err != nil {
		zap.L().Error("failed to generate submission code", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	record := &Submission{
		ID:             s.node.Generate().String(),
		Code:           code,
		CampaignID:     cmp.ID,
		UserID:         userID,
		Content:        req.Content,
		SubmissionType: cmp.SubmissionType,
		Links:          req.Links,
		AttachmentURL:  req.AttachmentURL,
		Status:         StatusPending,
		CreatedAt:      now,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.users.LockedUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		streak := engagement.AdvanceStreak(locked.Streak, locked.LastSubmissionDate, now)
		if streak.Changed || locked.Streak != streak.Streak {
			if err := s.users.RecordSubmissionStreak(ctx, tx, userID, streak.Streak, streak.LastSubmission); err != nil {
				return err
			}
		}

		if err := s.submissions.WithTrx(tx).Create(ctx, record); err != nil {
			return err
		}

		return s.campaigns.IncrementApplicants(ctx, tx, cmp.ID)
	}); err != nil {
		zap.L().Error("failed to create submission",
			zap.String("user_id", userID),
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
		return nil, err
	}

	s.publish(ctx, changefeed.OpInsert, record)
	return record, nil
}

// Moderate moves a pending submission to its terminal state. A second
// call on the same submission conflicts and leaves it unchanged.
// Approval does not move the campaign reward into the user's balance.
func (s *Service) Moderate(ctx context.Context, brandID, submissionID, decision string) (*Submission, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if decision != DecisionApprove && decision != DecisionReject {
		return nil, errutil.ValidationFailed("decision must be approve or reject")
	}

	record, err := s.submissions.FindOne(ctx, &Submission{ID: submissionID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errutil.NotFound("submission not found")
	}

	cmp, err := s.campaigns.Get(ctx, record.CampaignID)
	if err != nil {
		return nil, err
	}
	if cmp.BrandID != brandID {
		return nil, errutil.Forbidden("submission belongs to another brand's campaign")
	}

	if record.Status != StatusPending {
		return nil, errutil.Conflict("submission already moderated")
	}

	status := StatusApproved
	if decision == DecisionReject {
		status = StatusRejected
	}

	// The predicate on status makes the transition one-way even when two
	// moderations race past the read above: only one write finds the row
	// still pending.
	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&Submission{}).
		Where("id = ? AND status = ?", record.ID, StatusPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_at": now,
		})
	if res.Error != nil {
		zap.L().Error("failed to moderate submission", zap.Error(res.Error))
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errutil.Conflict("submission already moderated")
	}

	record.Status = status
	record.ReviewedAt = &now

	s.enqueueReviewed(record, cmp, decision)
	s.publish(ctx, changefeed.OpUpdate, record)
	return record, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Submission, error) {
	return s.submissions.Find(ctx, &Submission{UserID: userID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "DESC"}),
	)
}

// ListForBrand returns submissions across all of the brand's campaigns.
func (s *Service) ListForBrand(ctx context.Context, brandID string) ([]*Submission, error) {
	cmps, err := s.campaigns.ListByBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if len(cmps) == 0 {
		return []*Submission{}, nil
	}

	ids := make([]string, 0, len(cmps))
	for _, cmp := range cmps {
		ids = append(ids, cmp.ID)
	}

	var records []*Submission
	if err := s.db.WithContext(ctx).
		Where("campaign_id IN ?", ids).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Service) enqueueReviewed(record *Submission, cmp *campaign.Campaign, decision string) {
	if s.enqueuer == nil {
		return
	}

	payload, err := json.Marshal(ReviewedPayload{
		SubmissionID:  record.ID,
		UserID:        record.UserID,
		CampaignID:    cmp.ID,
		CampaignTitle: cmp.Title,
		Points:        cmp.Points,
		Decision:      decision,
	})
	if err != nil {
		zap.L().Error("failed to marshal reviewed payload", zap.Error(err))
		return
	}

	if _, err := s.enqueuer.Enqueue(asynq.NewTask(taskname.SubmissionReviewed, payload)); err != nil {
		zap.L().Error("failed to enqueue reviewed task",
			zap.String("submission_id", record.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) nextCode(ctx context.Context) (string, error) {
	if s.seq == nil {
		return s.node.Generate().String(), nil
	}
	return s.seq.NextSubmissionCode(ctx)
}

func (s *Service) publish(ctx context.Context, op changefeed.Op, record *Submission) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, changefeed.TableSubmissions, op, record)
}
