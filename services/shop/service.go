package shop

import (
	"context"
	"strings"

	"engagehub/pkg/config"
	"engagehub/pkg/errutil"
	"engagehub/services/user"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Package is one purchasable token bundle. Prices are fixed in ETH.
type Package struct {
	Tokens   int64  `json:"tokens"`
	PriceETH string `json:"price_eth"`
}

var packages = []Package{
	{Tokens: 50, PriceETH: "0.00013"},
	{Tokens: 100, PriceETH: "0.00026"},
	{Tokens: 250, PriceETH: "0.00065"},
	{Tokens: 500, PriceETH: "0.0013"},
	{Tokens: 1000, PriceETH: "0.0026"},
	{Tokens: 5000, PriceETH: "0.013"},
}

// Packages returns the static catalog.
func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// TokenCreditor settles a purchase into the user's balance.
type TokenCreditor interface {
	CreditTokens(ctx context.Context, userID, txHash string, tokens int64) (*user.User, error)
}

type Service struct {
	cfg   *config.Config
	users TokenCreditor
}

type ServiceParams struct {
	fx.In

	Config *config.Config
	Users  *user.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{cfg: p.Config, users: p.Users}
}

type SettleRequest struct {
	TxHash  string `json:"tx_hash"`
	ChainID int64  `json:"chain_id"`
	Tokens  int64  `json:"tokens"`
	To      string `json:"to"`
}

// Settle credits a purchase after the wallet reports the transfer as
// confirmed. The chain and destination are checked against config, the
// amount against the catalog; the transfer itself is not verified
// on-chain. Idempotency comes from the tx hash.
func (s *Service) Settle(ctx context.Context, userID string, req SettleRequest) (*user.User, error) {
	if req.ChainID != s.cfg.Wallet.ChainID {
		return nil, errutil.FailedPrecondition("transaction was sent on the wrong network")
	}

	if !strings.EqualFold(req.To, s.cfg.Wallet.ReceivingAddress) {
		return nil, errutil.FailedPrecondition("transaction was sent to an unknown address")
	}

	if !knownPackage(req.Tokens) {
		return nil, errutil.ValidationFailed("no package matches the token amount")
	}

	record, err := s.users.CreditTokens(ctx, userID, req.TxHash, req.Tokens)
	if err != nil {
		return nil, err
	}

	zap.L().Info("settled token purchase",
		zap.String("user_id", userID),
		zap.String("tx_hash", req.TxHash),
		zap.Int64("tokens", req.Tokens),
	)
	return record, nil
}

func knownPackage(tokens int64) bool {
	for _, p := range packages {
		if p.Tokens == tokens {
			return true
		}
	}
	return false
}
