package shop

import (
	"context"
	"testing"

	"engagehub/pkg/config"
	"engagehub/pkg/errutil"
	"engagehub/services/user"

	"github.com/stretchr/testify/require"
)

type creditorMock struct {
	creditFn func(ctx context.Context, userID, txHash string, tokens int64) (*user.User, error)
}

func (m *creditorMock) CreditTokens(ctx context.Context, userID, txHash string, tokens int64) (*user.User, error) {
	if m.creditFn != nil {
		return m.creditFn(ctx, userID, txHash, tokens)
	}
	return &user.User{ID: userID, TokensEarned: tokens}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Wallet.ChainID = 11155111
	cfg.Wallet.ReceivingAddress = "0xReceiving"
	return cfg
}

func validSettle() SettleRequest {
	return SettleRequest{
		TxHash:  "0xhash",
		ChainID: 11155111,
		Tokens:  100,
		To:      "0xReceiving",
	}
}

func mustStatus(t *testing.T, err error, want errutil.CoreStatus) {
	t.Helper()

	base, ok := err.(errutil.BaseError)
	require.True(t, ok, "expected BaseError, got %v", err)
	require.Equal(t, want, base.Code)
}

func TestSettle(t *testing.T) {
	var gotHash string
	svc := &Service{
		cfg: testConfig(),
		users: &creditorMock{
			creditFn: func(ctx context.Context, userID, txHash string, tokens int64) (*user.User, error) {
				gotHash = txHash
				return &user.User{ID: userID, TokensEarned: tokens}, nil
			},
		},
	}

	record, err := svc.Settle(context.Background(), "user-1", validSettle())
	require.NoError(t, err)
	require.Equal(t, "0xhash", gotHash)
	require.Equal(t, int64(100), record.TokensEarned)
}

func TestSettle_WrongNetwork(t *testing.T) {
	svc := &Service{cfg: testConfig(), users: &creditorMock{}}

	req := validSettle()
	req.ChainID = 1

	_, err := svc.Settle(context.Background(), "user-1", req)
	mustStatus(t, err, errutil.StatusFailedPrecondition)
}

func TestSettle_WrongReceiver(t *testing.T) {
	svc := &Service{cfg: testConfig(), users: &creditorMock{}}

	req := validSettle()
	req.To = "0xSomeoneElse"

	_, err := svc.Settle(context.Background(), "user-1", req)
	mustStatus(t, err, errutil.StatusFailedPrecondition)
}

func TestSettle_ReceiverComparisonIgnoresCase(t *testing.T) {
	svc := &Service{cfg: testConfig(), users: &creditorMock{}}

	req := validSettle()
	req.To = "0XRECEIVING"

	_, err := svc.Settle(context.Background(), "user-1", req)
	require.NoError(t, err)
}

func TestSettle_UnknownPackage(t *testing.T) {
	svc := &Service{cfg: testConfig(), users: &creditorMock{}}

	req := validSettle()
	req.Tokens = 123

	_, err := svc.Settle(context.Background(), "user-1", req)
	mustStatus(t, err, errutil.StatusValidationFailed)
}

func TestSettle_PropagatesCreditConflict(t *testing.T) {
	svc := &Service{
		cfg: testConfig(),
		users: &creditorMock{
			creditFn: func(ctx context.Context, userID, txHash string, tokens int64) (*user.User, error) {
				return nil, errutil.Conflict("transaction already credited")
			},
		},
	}

	_, err := svc.Settle(context.Background(), "user-1", validSettle())
	mustStatus(t, err, errutil.StatusConflict)
}

func TestPackages_Catalog(t *testing.T) {
	catalog := Packages()
	require.Len(t, catalog, 6)
	require.Equal(t, int64(50), catalog[0].Tokens)
	require.Equal(t, int64(5000), catalog[len(catalog)-1].Tokens)
}
