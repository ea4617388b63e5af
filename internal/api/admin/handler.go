// Package admin exposes the operator surface: conversation inspection,
// transcript export, memory reset, push messages and quota.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/entity"
	"github.com/hwangtech/linebot-backend/internal/pkg/formatter"
	"github.com/hwangtech/linebot-backend/internal/pkg/logger"
	"github.com/hwangtech/linebot-backend/internal/pkg/response"
)

// ChatUsecase is the slice of the chat usecase the admin surface needs.
type ChatUsecase interface {
	History(ctx context.Context, userID string) (entity.History, error)
	ClearHistory(ctx context.Context, userID string) error
	Transcript(ctx context.Context, userID string) (*entity.Transcript, error)
	Push(ctx context.Context, userID, text string) error
}

// QuotaConnector reports the channel's message quota consumption.
type QuotaConnector interface {
	GetQuota(ctx context.Context) (*entity.LineQuota, error)
}

type Handler struct {
	usecase    ChatUsecase
	quota      QuotaConnector
	formatters *formatter.Factory
}

func NewHandler(usecase ChatUsecase, quota QuotaConnector) *Handler {
	return &Handler{
		usecase:    usecase,
		quota:      quota,
		formatters: formatter.NewFactory(),
	}
}

// GetConversation handles GET /admin/conversations/{userId}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "GetConversation"),
	)

	history, err := h.usecase.History(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to load conversation", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	response.Success(w, map[string]any{
		"user_id": userID,
		"turns":   history,
	})
}

// DeleteConversation handles DELETE /admin/conversations/{userId}
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "DeleteConversation"),
	)

	if err := h.usecase.ClearHistory(ctx, userID); err != nil {
		ctxzap.Error(ctx, "failed to clear conversation", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to clear conversation")
		return
	}

	ctxzap.Info(ctx, "conversation cleared")
	w.WriteHeader(http.StatusNoContent)
}

// ExportConversation handles GET /admin/conversations/{userId}/export?format=md|pdf|docx
func (h *Handler) ExportConversation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	format := entity.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("format", string(format)),
		zap.String("action", "ExportConversation"),
	)

	f, err := h.formatters.Create(format)
	if err != nil {
		if errors.Is(err, entity.ErrUnsupportedFormat) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, "failed to create formatter")
		return
	}

	transcript, err := h.usecase.Transcript(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to build transcript", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to build transcript")
		return
	}

	data, err := f.Format(transcript)
	if err != nil {
		ctxzap.Error(ctx, "failed to format transcript", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to format transcript")
		return
	}

	ctxzap.Info(ctx, "transcript exported",
		zap.Int("turns", len(transcript.Turns)),
		zap.Int("size", len(data)),
	)

	response.Attachment(w, f.ContentType(), "conversation-"+userID+f.FileExtension(), data)
}

type pushRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// PushMessage handles POST /admin/push
func (h *Handler) PushMessage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "PushMessage")

	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Text == "" {
		response.Error(w, http.StatusBadRequest, "userId and text are required")
		return
	}

	if err := h.usecase.Push(ctx, req.UserID, req.Text); err != nil {
		ctxzap.Error(ctx, "push failed", zap.Error(err))
		response.Error(w, http.StatusBadGateway, "push delivery failed")
		return
	}

	response.Success(w, map[string]string{"status": "sent"})
}

// GetQuota handles GET /admin/quota
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetQuota")

	quota, err := h.quota.GetQuota(ctx)
	if err != nil {
		ctxzap.Error(ctx, "quota lookup failed", zap.Error(err))
		response.Error(w, http.StatusBadGateway, "quota lookup failed")
		return
	}

	response.Success(w, quota)
}
