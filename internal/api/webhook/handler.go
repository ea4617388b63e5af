package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/entity"
	"github.com/hwangtech/linebot-backend/internal/pkg/logger"
	"github.com/hwangtech/linebot-backend/internal/pkg/response"
	"github.com/hwangtech/linebot-backend/internal/pkg/signature"
)

// signatureHeader carries the HMAC the platform computed over the body.
const signatureHeader = "X-Line-Signature"

// Dispatcher processes a verified, decoded webhook envelope.
type Dispatcher interface {
	HandleEnvelope(ctx context.Context, envelope *entity.WebhookEnvelope)
}

type Handler struct {
	dispatcher    Dispatcher
	channelSecret string
}

func NewHandler(dispatcher Dispatcher, channelSecret string) *Handler {
	return &Handler{
		dispatcher:    dispatcher,
		channelSecret: channelSecret,
	}
}

// Callback handles POST /callback, the webhook entrypoint.
//
// Contract with the platform: 400 when the signature does not match (no
// events are processed), 500 when the body is not JSON at all, and 200
// with body "OK" otherwise, including when individual events fail.
// Anything but 200 triggers the platform's own retry behavior, so
// per-event failures must not surface here.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Callback")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		ctxzap.Error(ctx, "failed to read webhook body", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to read request body")
		return
	}

	provided := r.Header.Get(signatureHeader)
	if !signature.Verify(body, provided, h.channelSecret) {
		ctxzap.Warn(ctx, "webhook signature verification failed",
			zap.Int("body_size", len(body)),
		)
		response.Error(w, http.StatusBadRequest, entity.ErrInvalidSignature.Error())
		return
	}

	var envelope entity.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if !json.Valid(body) {
			ctxzap.Error(ctx, "webhook body is not valid JSON", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, entity.ErrMalformedBody.Error())
			return
		}
		// Valid JSON with an unexpected shape: treat as an empty
		// event list and acknowledge.
		ctxzap.Warn(ctx, "webhook body has unexpected shape, treating as no events", zap.Error(err))
		envelope = entity.WebhookEnvelope{}
	}

	ctxzap.Info(ctx, "webhook verified",
		zap.Int("event_count", len(envelope.Events)),
	)

	h.dispatcher.HandleEnvelope(ctx, &envelope)

	response.Text(w, http.StatusOK, "OK")
}
