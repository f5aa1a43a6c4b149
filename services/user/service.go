package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"engagehub/pkg/changefeed"
	"engagehub/pkg/config"
	"engagehub/pkg/db/option"
	"engagehub/pkg/errutil"
	"engagehub/pkg/middleware"
	"engagehub/pkg/rediskey"
	"engagehub/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultLeaderboardLimit = 10

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	rdb  *redis.Client
	cfg  *config.Config
	feed *changefeed.Publisher

	users   repository.Repository[User]
	credits repository.Repository[TokenCredit]
}

type ServiceParams struct {
	fx.In

	DB     *gorm.DB
	Node   *snowflake.Node
	Redis  *redis.Client
	Config *config.Config
	Feed   *changefeed.Publisher `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		rdb:  p.Redis,
		cfg:  p.Config,
		feed: p.Feed,

		users:   repository.ProvideStore[User](p.DB),
		credits: repository.ProvideStore[TokenCredit](p.DB),
	}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.Name == "" {
		return nil, errutil.ValidationFailed("email, password and name are required")
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleBrand {
		return nil, errutil.ValidationFailed("role must be user or brand")
	}

	existing, err := s.users.FindOne(ctx, &User{Email: email})
	if err != nil {
		zap.L().Error("failed to query user by email", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, errutil.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errutil.Internal("failed to hash password", errutil.WithErr(err))
	}

	now := time.Now()
	record := &User{
		ID:           s.node.Generate().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Brand accounts manage campaigns; the welcome grant is for members.
	if role == RoleUser {
		record.Points = SignupGrantPoints
		record.TokensEarned = SignupGrantTokens
	}

	if err := s.users.Create(ctx, record); err != nil {
		zap.L().Error("failed to create user", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, changefeed.OpInsert, record)
	return record, nil
}

// Authenticate verifies the credentials and returns the account. The
// failure message never reveals which of the two was wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	record, err := s.users.FindOne(ctx, &User{Email: email})
	if err != nil {
		zap.L().Error("failed to query user by email", zap.Error(err))
		return nil, err
	}
	if record == nil {
		return nil, errutil.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return nil, errutil.Unauthorized("invalid email or password")
	}

	return record, nil
}

// OpenSession issues an opaque bearer token backed by a redis record.
func (s *Service) OpenSession(ctx context.Context, record *User) (string, error) {
	token := uuid.NewString()

	payload, err := json.Marshal(middleware.Session{UserID: record.ID, Role: record.Role})
	if err != nil {
		return "", errutil.Internal("failed to encode session", errutil.WithErr(err))
	}

	if err := s.rdb.Set(ctx, rediskey.BuildSessionKey(token), payload, s.cfg.Session.TTL).Err(); err != nil {
		zap.L().Error("failed to store session", zap.Error(err))
		return "", errutil.Internal("failed to open session", errutil.WithErr(err))
	}

	return token, nil
}

func (s *Service) CloseSession(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, rediskey.BuildSessionKey(token)).Err()
}

func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	record, err := s.users.FindOne(ctx, &User{ID: userID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errutil.NotFound("user not found")
	}
	return record, nil
}

func (s *Service) AttachWallet(ctx context.Context, userID, address string) (*User, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errutil.ValidationFailed("wallet address is required")
	}

	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, record.ID, map[string]any{
		"wallet_address": address,
		"updated_at":     time.Now(),
	}); err != nil {
		zap.L().Error("failed to attach wallet", zap.Error(err))
		return nil, err
	}

	record.WalletAddress = address
	s.publish(ctx, changefeed.OpUpdate, record)
	return record, nil
}

// Leaderboard returns member accounts ordered by points.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*User, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	return s.users.Find(ctx, &User{Role: RoleUser},
		option.WithSortBy(option.QuerySortBy{SortBy: "points", OrderBy: "DESC"}),
		option.WithLimit(limit),
	)
}

// CreditTokens settles a confirmed purchase. The unique tx hash insert
// and the balance increment commit together, so a retried confirmation
// either conflicts or is the first and only credit.
func (s *Service) CreditTokens(ctx context.Context, userID, txHash string, tokens int64) (*User, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if txHash == "" {
		return nil, errutil.ValidationFailed("transaction hash is required")
	}
	if tokens <= 0 {
		return nil, errutil.ValidationFailed("token amount must be positive")
	}

	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		creditTx := s.credits.WithTrx(tx)

		existing, err := creditTx.FindOne(ctx, &TokenCredit{TxHash: txHash})
		if err != nil {
			return err
		}
		if existing != nil {
			return errutil.Conflict("transaction already credited")
		}

		if err := creditTx.Create(ctx, &TokenCredit{
			ID:        s.node.Generate().String(),
			UserID:    record.ID,
			TxHash:    txHash,
			Tokens:    tokens,
			CreatedAt: time.Now(),
		}); err != nil {
			// A settlement racing past the FindOne above lands here on
			// the unique tx_hash index.
			if isUniqueViolation(err) {
				return errutil.Conflict("transaction already credited")
			}
			return err
		}

		return s.users.WithTrx(tx).Update(ctx, record.ID, map[string]any{
			"tokens_earned": gorm.Expr("tokens_earned + ?", tokens),
			"updated_at":    time.Now(),
		})
	}); err != nil {
		zap.L().Error("failed to credit tokens",
			zap.String("user_id", userID),
			zap.String("tx_hash", txHash),
			zap.Error(err),
		)
		return nil, err
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, changefeed.OpUpdate, current)
	return current, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// Not every dialect reports through gorm's translated error.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// RecordSubmissionStreak persists a streak advance inside the caller's
// transaction. Used by submission creation, which owns the row lock.
func (s *Service) RecordSubmissionStreak(ctx context.Context, tx *gorm.DB, userID string, streak int, last time.Time) error {
	return s.users.WithTrx(tx).Update(ctx, userID, map[string]any{
		"streak":               streak,
		"last_submission_date": last,
		"updated_at":           time.Now(),
	})
}

// LockedUser fetches the user row under FOR UPDATE within tx.
func (s *Service) LockedUser(ctx context.Context, tx *gorm.DB, userID string) (*User, error) {
	record, err := s.users.WithTrx(tx.Scopes(option.LockingUpdate)).FindOne(ctx, &User{ID: userID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errutil.NotFound("user not found")
	}
	return record, nil
}

func (s *Service) publish(ctx context.Context, op changefeed.Op, record *User) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, changefeed.TableUsers, op, record)
}
