package pipeline

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

// MockConnector stands in for the answer pipeline during local runs.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Answer(ctx context.Context, req *entity.PipelineAnswerRequest) (*entity.PipelineAnswer, error) {
	ctxzap.Info(ctx, "[MOCK] answering via pipeline",
		zap.Int("history_len", len(req.History)),
	)

	return &entity.PipelineAnswer{
		Answer: fmt.Sprintf("(mock) You asked: %q. This is turn %d of our conversation.",
			req.Question, len(req.History)+1),
		Sources: []string{"mock://corpus/demo"},
	}, nil
}

func (m *MockConnector) IndexDocument(ctx context.Context, filename string, content []byte) error {
	ctxzap.Info(ctx, "[MOCK] indexing document",
		zap.String("filename", filename),
		zap.Int("size", len(content)),
	)
	return nil
}
