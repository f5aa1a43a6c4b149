package user

import "time"

const (
	RoleUser  = "user"
	RoleBrand = "brand"
)

// New user accounts start with a welcome grant.
const (
	SignupGrantPoints = 150
	SignupGrantTokens = 25
)

type User struct {
	ID                 string     `gorm:"column:id;primaryKey" json:"id"`
	Email              string     `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash       string     `gorm:"column:password_hash" json:"-"`
	Name               string     `gorm:"column:name" json:"name"`
	Role               string     `gorm:"column:role" json:"role"`
	Points             int64      `gorm:"column:points" json:"points"`
	TokensEarned       int64      `gorm:"column:tokens_earned" json:"tokens_earned"`
	Streak             int        `gorm:"column:streak" json:"streak"`
	LastSubmissionDate *time.Time `gorm:"column:last_submission_date" json:"last_submission_date,omitempty"`
	WalletAddress      string     `gorm:"column:wallet_address" json:"wallet_address,omitempty"`
	CreatedAt          time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// TokenCredit records one settled token purchase. The unique tx hash is
// what makes retried settlement callbacks idempotent.
type TokenCredit struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;index" json:"user_id"`
	TxHash    string    `gorm:"column:tx_hash;uniqueIndex" json:"tx_hash"`
	Tokens    int64     `gorm:"column:tokens" json:"tokens"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (TokenCredit) TableName() string {
	return "token_credits"
}
