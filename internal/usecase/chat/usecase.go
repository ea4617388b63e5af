// Package chat dispatches webhook events: text messages are answered
// through the pipeline with the user's recent history as context, every
// other event type is acknowledged and skipped.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/entity"
	"github.com/hwangtech/linebot-backend/internal/pkg/logger"
)

type Usecase struct {
	store    ConversationStore
	pipeline PipelineConnector
	line     LineConnector

	// fallbackMessage is sent when the pipeline fails. Empty means the
	// failed event is dropped without a reply.
	fallbackMessage string

	// userLocks serializes get/answer/append/reply per user so two
	// concurrent deliveries for the same user cannot drop a turn.
	userLocks sync.Map

	logger *zap.Logger
}

func NewUsecase(
	store ConversationStore,
	pipeline PipelineConnector,
	line LineConnector,
	fallbackMessage string,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		store:           store,
		pipeline:        pipeline,
		line:            line,
		fallbackMessage: fallbackMessage,
		logger:          log,
	}
}

// HandleEnvelope processes every event of one webhook delivery in order.
// Per-event failures are contained: they are logged and the remaining
// events still run. The caller acknowledges the delivery regardless.
func (u *Usecase) HandleEnvelope(ctx context.Context, envelope *entity.WebhookEnvelope) {
	for i := range envelope.Events {
		event := &envelope.Events[i]

		if !event.IsTextMessage() {
			ctxzap.Debug(ctx, "skipping non-text event",
				zap.String("event_type", event.Type),
				zap.String("message_type", event.Message.Type),
			)
			continue
		}

		u.handleTextMessage(ctx, event)
	}
}

func (u *Usecase) handleTextMessage(ctx context.Context, event *entity.Event) {
	userID := event.Source.UserID

	ctx = logger.AddFields(ctx,
		zap.String("user_id", userID),
		zap.String("action", "HandleTextMessage"),
	)

	unlock := u.lockUser(userID)
	defer unlock()

	history, err := u.store.Get(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to load conversation history", zap.Error(err))
		history = entity.History{}
	}

	answer, err := u.pipeline.Answer(ctx, &entity.PipelineAnswerRequest{
		Question: event.Message.Text,
		History:  history.Pairs(),
	})
	if err != nil {
		// Recoverable per-event failure: no history update, optional
		// fallback reply, next events still run.
		ctxzap.Error(ctx, "pipeline call failed", zap.Error(err))
		if u.fallbackMessage != "" {
			if rerr := u.line.Reply(ctx, event.ReplyToken, u.fallbackMessage); rerr != nil {
				ctxzap.Error(ctx, "fallback reply failed", zap.Error(rerr))
			}
		}
		return
	}

	if err := u.store.Append(ctx, userID, entity.Turn{
		Question: event.Message.Text,
		Answer:   answer.Answer,
		AskedAt:  time.Now(),
	}); err != nil {
		// The answer is still worth delivering even if it will not be
		// remembered next turn.
		ctxzap.Error(ctx, "failed to append conversation turn", zap.Error(err))
	}

	if err := u.line.Reply(ctx, event.ReplyToken, answer.Answer); err != nil {
		// Delivery errors are logged and dropped. The reply token is
		// single-use so there is nothing useful to retry, and the
		// history update stands.
		ctxzap.Error(ctx, "reply delivery failed", zap.Error(err))
	}
}

// History returns the user's current conversation history.
func (u *Usecase) History(ctx context.Context, userID string) (entity.History, error) {
	return u.store.Get(ctx, userID)
}

// ClearHistory resets the user's conversation memory.
func (u *Usecase) ClearHistory(ctx context.Context, userID string) error {
	return u.store.Clear(ctx, userID)
}

// Transcript prepares the user's conversation for export, enriched with
// the profile display name when the platform can provide it.
func (u *Usecase) Transcript(ctx context.Context, userID string) (*entity.Transcript, error) {
	history, err := u.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	transcript := &entity.Transcript{
		UserID:     userID,
		ExportedAt: time.Now(),
		Turns:      history,
	}

	if profile, err := u.line.GetProfile(ctx, userID); err == nil {
		transcript.DisplayName = profile.DisplayName
	} else {
		ctxzap.Debug(ctx, "profile lookup failed, exporting without display name", zap.Error(err))
	}

	return transcript, nil
}

// Push sends an operator-initiated message to a user.
func (u *Usecase) Push(ctx context.Context, userID, text string) error {
	return u.line.Push(ctx, userID, text)
}

func (u *Usecase) lockUser(userID string) func() {
	v, _ := u.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
