package taskname

const (
	// Notification tasks
	SubmissionReviewed = "notification:submission_reviewed"

	// Campaign tasks
	CampaignExpiryRun = "campaign:expiry:run"
)
