package line

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

// MockConnector logs messages instead of delivering them. Useful when
// running without real channel credentials.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Reply(ctx context.Context, replyToken, text string) error {
	ctxzap.Info(ctx, "[MOCK] reply",
		zap.String("reply_token", replyToken),
		zap.String("text", text),
	)
	return nil
}

func (m *MockConnector) Push(ctx context.Context, to, text string) error {
	ctxzap.Info(ctx, "[MOCK] push",
		zap.String("to", to),
		zap.String("text", text),
	)
	return nil
}

func (m *MockConnector) GetProfile(ctx context.Context, userID string) (*entity.LineProfile, error) {
	ctxzap.Info(ctx, "[MOCK] get profile", zap.String("user_id", userID))
	return &entity.LineProfile{UserID: userID, DisplayName: "Mock User"}, nil
}

func (m *MockConnector) GetQuota(ctx context.Context) (*entity.LineQuota, error) {
	ctxzap.Info(ctx, "[MOCK] get quota")
	return &entity.LineQuota{TotalUsage: 0}, nil
}
