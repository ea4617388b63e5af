package chat

import (
	"context"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

// ConversationStore keeps the bounded per-user history.
type ConversationStore interface {
	Get(ctx context.Context, userID string) (entity.History, error)
	Append(ctx context.Context, userID string, turn entity.Turn) error
	Clear(ctx context.Context, userID string) error
}

// PipelineConnector is the answer pipeline boundary.
type PipelineConnector interface {
	Answer(ctx context.Context, req *entity.PipelineAnswerRequest) (*entity.PipelineAnswer, error)
}

// LineConnector delivers messages back to the platform.
type LineConnector interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, to, text string) error
	GetProfile(ctx context.Context, userID string) (*entity.LineProfile, error)
}
