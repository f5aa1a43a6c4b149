package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"engagehub/pkg/taskname"
	"engagehub/services/submission"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var TaskModule = fx.Module("task.notification",
	fx.Invoke(registerTaskHandlers),
)

func registerTaskHandlers(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.SubmissionReviewed, svc.HandleSubmissionReviewed)
}

// HandleSubmissionReviewed turns a moderation decision into the
// notification the member sees in the bell.
func (s *Service) HandleSubmissionReviewed(ctx context.Context, t *asynq.Task) error {
	var payload submission.ReviewedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	title, message := reviewedCopy(payload)

	if _, err := s.Notify(ctx, payload.UserID, title, message); err != nil {
		zap.L().Error("failed to notify reviewed submission",
			zap.String("submission_id", payload.SubmissionID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func reviewedCopy(p submission.ReviewedPayload) (string, string) {
	if p.Decision == submission.DecisionApprove {
		return "Submission approved",
			fmt.Sprintf("Your submission to %q was approved. The campaign reward is %d points.", p.CampaignTitle, p.Points)
	}

	return "Submission rejected",
		fmt.Sprintf("Your submission to %q was not accepted this time.", p.CampaignTitle)
}
