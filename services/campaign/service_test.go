package campaign

import (
	"context"
	"testing"
	"time"

	"engagehub/pkg/errutil"
	"engagehub/pkg/repository"
	"engagehub/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Campaign{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Service{
		db:        db,
		node:      node,
		campaigns: repository.ProvideStore[Campaign](db),
	}
}

func mustStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()

	base, ok := err.(errutil.BaseError)
	require.True(t, ok, "expected BaseError, got %v", err)
	require.Equal(t, want, base.Code)
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		Title:          "Post a photo with our product",
		Description:    "Share a photo on your socials",
		Points:         100,
		SubmissionType: SubmissionTypePhoto,
		EndAt:          time.Now().Add(7 * 24 * time.Hour),
	}
}

func TestCreate(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.Create(context.Background(), "brand-1", "Acme", validCreateRequest())
	require.NoError(t, err)

	require.Equal(t, StatusActive, record.Status)
	require.Equal(t, "brand-1", record.BrandID)
	require.Equal(t, "Acme", record.BrandName)
	require.NotEmpty(t, record.Code)
	require.Zero(t, record.ApplicantCount)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := validCreateRequest()
	req.Title = "  "
	_, err := svc.Create(ctx, "brand-1", "Acme", req)
	mustStatus(t, err, errutil.StatusValidationFailed)

	req = validCreateRequest()
	req.Points = 0
	_, err = svc.Create(ctx, "brand-1", "Acme", req)
	mustStatus(t, err, errutil.StatusValidationFailed)

	req = validCreateRequest()
	req.SubmissionType = "audio"
	_, err = svc.Create(ctx, "brand-1", "Acme", req)
	mustStatus(t, err, errutil.StatusValidationFailed)

	req = validCreateRequest()
	req.EndAt = time.Now().Add(-time.Hour)
	_, err = svc.Create(ctx, "brand-1", "Acme", req)
	mustStatus(t, err, errutil.StatusValidationFailed)
}

func TestListActive_NewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "brand-1", "Acme", validCreateRequest())
	require.NoError(t, err)
	require.NoError(t, svc.campaigns.Update(ctx, first.ID, map[string]any{
		"created_at": time.Now().Add(-time.Hour),
	}))

	second, err := svc.Create(ctx, "brand-2", "Globex", validCreateRequest())
	require.NoError(t, err)

	records, _, err := svc.ListActive(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, second.ID, records[0].ID)
	require.Equal(t, first.ID, records[1].ID)
}

func TestListActive_CursorPages(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record, err := svc.Create(ctx, "brand-1", "Acme", validCreateRequest())
		require.NoError(t, err)
		require.NoError(t, svc.campaigns.Update(ctx, record.ID, map[string]any{
			"created_at": time.Now().Add(time.Duration(-i) * time.Hour),
		}))
	}

	page1, info, err := svc.ListActive(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.True(t, info.HasMore)
	require.NotEmpty(t, info.NextCursor)

	page2, info, err := svc.ListActive(ctx, info.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.False(t, info.HasMore)

	_, _, err = svc.ListActive(ctx, "%%%not-a-cursor", 2)
	mustStatus(t, err, errutil.StatusBadRequest)
}

func TestClose(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, "brand-1", "Acme", validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Close(ctx, "brand-2", record.ID)
	mustStatus(t, err, errutil.StatusForbidden)

	closed, err := svc.Close(ctx, "brand-1", record.ID)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, closed.Status)

	_, err = svc.Close(ctx, "brand-1", record.ID)
	mustStatus(t, err, errutil.StatusConflict)

	records, _, err := svc.ListActive(ctx, "", 0)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestExpireDue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	due, err := svc.Create(ctx, "brand-1", "Acme", validCreateRequest())
	require.NoError(t, err)
	require.NoError(t, svc.campaigns.Update(ctx, due.ID, map[string]any{
		"end_at": time.Now().Add(-time.Hour),
	}))

	open, err := svc.Create(ctx, "brand-1", "Acme", validCreateRequest())
	require.NoError(t, err)

	count, err := svc.ExpireDue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	expired, err := svc.Get(ctx, due.ID)
	require.NoError(t, err)
	require.Equal(t, StatusExpired, expired.Status)

	still, err := svc.Get(ctx, open.ID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, still.Status)

	// Sweep is idempotent.
	count, err = svc.ExpireDue(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}
