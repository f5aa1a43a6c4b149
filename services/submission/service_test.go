package submission

import (
	"context"
	"testing"
	"time"

	"engagehub/pkg/errutil"
	"engagehub/pkg/repository"
	"engagehub/services/campaign"
	"engagehub/services/testutil"
	"engagehub/services/user"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type userStoreMock struct {
	lockedFn func(ctx context.Context, tx *gorm.DB, userID string) (*user.User, error)
	recordFn func(ctx context.Context, tx *gorm.DB, userID string, streak int, last time.Time) error
}

func (m *userStoreMock) LockedUser(ctx context.Context, tx *gorm.DB, userID string) (*user.User, error) {
	if m.lockedFn != nil {
		return m.lockedFn(ctx, tx, userID)
	}
	return &user.User{ID: userID}, nil
}

func (m *userStoreMock) RecordSubmissionStreak(ctx context.Context, tx *gorm.DB, userID string, streak int, last time.Time) error {
	if m.recordFn != nil {
		return m.recordFn(ctx, tx, userID, streak, last)
	}
	return nil
}

type campaignStoreMock struct {
	getFn         func(ctx context.Context, id string) (*campaign.Campaign, error)
	incrementFn   func(ctx context.Context, tx *gorm.DB, id string) error
	listByBrandFn func(ctx context.Context, brandID string) ([]*campaign.Campaign, error)
}

func (m *campaignStoreMock) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, errutil.NotFound("campaign not found")
}

func (m *campaignStoreMock) IncrementApplicants(ctx context.Context, tx *gorm.DB, id string) error {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, tx, id)
	}
	return nil
}

func (m *campaignStoreMock) ListByBrand(ctx context.Context, brandID string) ([]*campaign.Campaign, error) {
	if m.listByBrandFn != nil {
		return m.listByBrandFn(ctx, brandID)
	}
	return nil, nil
}

func activeCampaign() *campaign.Campaign {
	return &campaign.Campaign{
		ID:             "cmp-1",
		BrandID:        "brand-1",
		Title:          "Photo challenge",
		Points:         100,
		SubmissionType: campaign.SubmissionTypePhoto,
		EndAt:          time.Now().Add(24 * time.Hour),
		Status:         campaign.StatusActive,
	}
}

func newTestService(t *testing.T, users *userStoreMock, campaigns *campaignStoreMock) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Submission{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Service{
		db:          db,
		node:        node,
		users:       users,
		campaigns:   campaigns,
		submissions: repository.ProvideStore[Submission](db),
	}
}

func mustStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()

	base, ok := err.(errutil.BaseError)
	require.True(t, ok, "expected BaseError, got %v", err)
	require.Equal(t, want, base.Code)
}

func validRequest() CreateRequest {
	return CreateRequest{
		Content: "here is my post",
		Links:   SocialLinks{Instagram: "https://instagram.com/p/abc"},
	}
}

func TestCreate_EmptyContentFails(t *testing.T) {
	svc := newTestService(t, &userStoreMock{}, &campaignStoreMock{})

	req := validRequest()
	req.Content = "  "

	_, err := svc.Create(context.Background(), "user-1", "cmp-1", req)
	mustStatus(t, err, errutil.StatusValidationFailed)
}

func TestCreate_AllLinksEmptyFails(t *testing.T) {
	svc := newTestService(t, &userStoreMock{}, &campaignStoreMock{})

	req := validRequest()
	req.Links = SocialLinks{}

	_, err := svc.Create(context.Background(), "user-1", "cmp-1", req)
	mustStatus(t, err, errutil.StatusValidationFailed)
}

func TestCreate_SingleLinkSucceeds(t *testing.T) {
	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			return activeCampaign(), nil
		},
	}
	svc := newTestService(t, &userStoreMock{}, campaigns)

	record, err := svc.Create(context.Background(), "user-1", "cmp-1", validRequest())
	require.NoError(t, err)
	require.Equal(t, StatusPending, record.Status)
	require.Equal(t, "cmp-1", record.CampaignID)
	require.Equal(t, campaign.SubmissionTypePhoto, record.SubmissionType)
	require.Nil(t, record.ReviewedAt)
}

func TestCreate_ClosedCampaignFails(t *testing.T) {
	closed := activeCampaign()
	closed.Status = campaign.StatusClosed

	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			return closed, nil
		},
	}
	svc := newTestService(t, &userStoreMock{}, campaigns)

	_, err := svc.Create(context.Background(), "user-1", "cmp-1", validRequest())
	mustStatus(t, err, errutil.StatusFailedPrecondition)
}

func TestCreate_PastEndDateFails(t *testing.T) {
	overdue := activeCampaign()
	overdue.EndAt = time.Now().Add(-time.Hour)

	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			return overdue, nil
		},
	}
	svc := newTestService(t, &userStoreMock{}, campaigns)

	_, err := svc.Create(context.Background(), "user-1", "cmp-1", validRequest())
	mustStatus(t, err, errutil.StatusFailedPrecondition)
}

func TestCreate_AdvancesStreakAndApplicants(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)

	var gotStreak int
	users := &userStoreMock{
		lockedFn: func(ctx context.Context, tx *gorm.DB, userID string) (*user.User, error) {
			return &user.User{ID: userID, Streak: 4, LastSubmissionDate: &yesterday}, nil
		},
		recordFn: func(ctx context.Context, tx *gorm.DB, userID string, streak int, last time.Time) error {
			gotStreak = streak
			return nil
		},
	}

	var incremented string
	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			return activeCampaign(), nil
		},
		incrementFn: func(ctx context.Context, tx *gorm.DB, id string) error {
			incremented = id
			return nil
		},
	}

	svc := newTestService(t, users, campaigns)

	_, err := svc.Create(context.Background(), "user-1", "cmp-1", validRequest())
	require.NoError(t, err)
	require.Equal(t, 5, gotStreak)
	require.Equal(t, "cmp-1", incremented)
}

func TestCreate_SameDayDoesNotTouchStreak(t *testing.T) {
	today := time.Now()

	users := &userStoreMock{
		lockedFn: func(ctx context.Context, tx *gorm.DB, userID string) (*user.User, error) {
			return &user.User{ID: userID, Streak: 5, LastSubmissionDate: &today}, nil
		},
		recordFn: func(ctx context.Context, tx *gorm.DB, userID string, streak int, last time.Time) error {
			t.Fatalf("unexpected streak write: %d", streak)
			return nil
		},
	}
	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			return activeCampaign(), nil
		},
	}

	svc := newTestService(t, users, campaigns)

	_, err := svc.Create(context.Background(), "user-1", "cmp-1", validRequest())
	require.NoError(t, err)
}

func TestCreate_StreakFailureRollsBackSubmission(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)

	users := &userStoreMock{
		lockedFn: func(ctx context.Context, tx *gorm.DB, userID string) (*user.User, error) {
			return &user.User{ID: userID, Streak: 1, LastSubmissionDate: &yesterday}, nil
		},
		recordFn: func(ctx context.Context, tx *gorm.DB, userID string, streak int, last time.Time) error {
			return errutil.Internal("write failed")
		},
	}
	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			return activeCampaign(), nil
		},
	}

	svc := newTestService(t, users, campaigns)

	_, err := svc.Create(context.Background(), "user-1", "cmp-1", validRequest())
	require.Error(t, err)

	records, err := svc.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, records)
}

func seedPending(t *testing.T, svc *Service) *Submission {
	t.Helper()

	record, err := svc.Create(context.Background(), "user-1", "cmp-1", validRequest())
	require.NoError(t, err)
	return record
}

func moderationService(t *testing.T) *Service {
	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			return activeCampaign(), nil
		},
	}
	return newTestService(t, &userStoreMock{}, campaigns)
}

func TestModerate_ApprovesOnce(t *testing.T) {
	svc := moderationService(t)
	record := seedPending(t, svc)
	ctx := context.Background()

	approved, err := svc.Moderate(ctx, "brand-1", record.ID, DecisionApprove)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedAt)

	// Terminal states admit no second decision.
	_, err = svc.Moderate(ctx, "brand-1", record.ID, DecisionReject)
	mustStatus(t, err, errutil.StatusConflict)

	stored, err := svc.submissions.FindOne(ctx, &Submission{ID: record.ID})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, stored.Status)
}

func TestModerate_CompetingDecisionConflicts(t *testing.T) {
	// A second moderation lands between this call's pending read and its
	// status write. The loser must conflict, not overwrite the winner.
	var svc *Service
	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			if svc != nil {
				now := time.Now()
				svc.db.Model(&Submission{}).
					Where("status = ?", StatusPending).
					Updates(map[string]any{"status": StatusApproved, "reviewed_at": now})
			}
			return activeCampaign(), nil
		},
	}
	svc = newTestService(t, &userStoreMock{}, campaigns)
	record := seedPending(t, svc)

	_, err := svc.Moderate(context.Background(), "brand-1", record.ID, DecisionReject)
	mustStatus(t, err, errutil.StatusConflict)

	stored, err := svc.submissions.FindOne(context.Background(), &Submission{ID: record.ID})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, stored.Status)
}

func TestModerate_Reject(t *testing.T) {
	svc := moderationService(t)
	record := seedPending(t, svc)

	rejected, err := svc.Moderate(context.Background(), "brand-1", record.ID, DecisionReject)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewedAt)
}

func TestModerate_WrongBrandForbidden(t *testing.T) {
	svc := moderationService(t)
	record := seedPending(t, svc)

	_, err := svc.Moderate(context.Background(), "brand-2", record.ID, DecisionApprove)
	mustStatus(t, err, errutil.StatusForbidden)

	stored, err := svc.submissions.FindOne(context.Background(), &Submission{ID: record.ID})
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)
}

func TestModerate_InvalidDecision(t *testing.T) {
	svc := moderationService(t)
	record := seedPending(t, svc)

	_, err := svc.Moderate(context.Background(), "brand-1", record.ID, "maybe")
	mustStatus(t, err, errutil.StatusValidationFailed)
}

func TestModerate_NotFound(t *testing.T) {
	svc := moderationService(t)

	_, err := svc.Moderate(context.Background(), "brand-1", "missing", DecisionApprove)
	mustStatus(t, err, errutil.StatusNotFound)
}

func TestListForBrand(t *testing.T) {
	cmpA := activeCampaign()
	cmpB := activeCampaign()
	cmpB.ID = "cmp-2"

	campaigns := &campaignStoreMock{
		getFn: func(ctx context.Context, id string) (*campaign.Campaign, error) {
			if id == "cmp-2" {
				return cmpB, nil
			}
			return cmpA, nil
		},
		listByBrandFn: func(ctx context.Context, brandID string) ([]*campaign.Campaign, error) {
			return []*campaign.Campaign{cmpA, cmpB}, nil
		},
	}

	svc := newTestService(t, &userStoreMock{}, campaigns)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", "cmp-1", validRequest())
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", "cmp-2", validRequest())
	require.NoError(t, err)

	records, err := svc.ListForBrand(ctx, "brand-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	empty := &campaignStoreMock{
		listByBrandFn: func(ctx context.Context, brandID string) ([]*campaign.Campaign, error) {
			return nil, nil
		},
	}
	svc.campaigns = empty

	records, err = svc.ListForBrand(ctx, "brand-2")
	require.NoError(t, err)
	require.Empty(t, records)
}
