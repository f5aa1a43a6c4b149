package submission

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// SocialLinks are the fixed platform fields a submission may carry.
// At least one must be set.
type SocialLinks struct {
	Instagram string `gorm:"column:instagram_link" json:"instagram,omitempty"`
	TikTok    string `gorm:"column:tiktok_link" json:"tiktok,omitempty"`
	YouTube   string `gorm:"column:youtube_link" json:"youtube,omitempty"`
	Twitter   string `gorm:"column:twitter_link" json:"twitter,omitempty"`
	Facebook  string `gorm:"column:facebook_link" json:"facebook,omitempty"`
}

func (l SocialLinks) Empty() bool {
	return l.Instagram == "" && l.TikTok == "" && l.YouTube == "" && l.Twitter == "" && l.Facebook == ""
}

type Submission struct {
	ID             string      `gorm:"column:id;primaryKey" json:"id"`
	Code           string      `gorm:"column:code;uniqueIndex" json:"code"`
	CampaignID     string      `gorm:"column:campaign_id;index" json:"campaign_id"`
	UserID         string      `gorm:"column:user_id;index" json:"user_id"`
	Content        string      `gorm:"column:content" json:"content"`
	SubmissionType string      `gorm:"column:submission_type" json:"submission_type"`
	Links          SocialLinks `gorm:"embedded" json:"links"`
	AttachmentURL  string      `gorm:"column:attachment_url" json:"attachment_url,omitempty"`
	Status         string      `gorm:"column:status;index" json:"status"`
	CreatedAt      time.Time   `gorm:"column:created_at" json:"created_at"`
	ReviewedAt     *time.Time  `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// ReviewedPayload is the asynq task body enqueued after moderation.
type ReviewedPayload struct {
	SubmissionID  string `json:"submission_id"`
	UserID        string `json:"user_id"`
	CampaignID    string `json:"campaign_id"`
	CampaignTitle string `json:"campaign_title"`
	Points        int64  `json:"points"`
	Decision      string `json:"decision"`
}
