// Package pipeline talks to the external retrieval-augmented answer
// service. The service owns the document index, the embeddings and the
// model call; this connector only moves questions in and answers out.
package pipeline

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/config"
	"github.com/hwangtech/linebot-backend/internal/entity"
	"github.com/hwangtech/linebot-backend/internal/integration/common"
	pkghttp "github.com/hwangtech/linebot-backend/pkg/http"
)

type Connector struct {
	config    config.PipelineConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.PipelineConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Answer asks the pipeline to answer a question given the user's recent
// history. The call is retried per the configured policy; upstream
// answers are normalized to entity.PipelineAnswer and an empty answer is
// an error.
func (c *Connector) Answer(ctx context.Context, req *entity.PipelineAnswerRequest) (*entity.PipelineAnswer, error) {
	ctxzap.Info(ctx, "requesting answer from pipeline service",
		zap.Int("history_len", len(req.History)),
	)

	var resp entity.PipelineAnswer
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, c.config.AnswerEndpoint, req, &resp)
		},
		append(c.config.Retry.ToOptions(), retry.Context(ctx))...,
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline answer failed: %w", err)
	}

	if resp.Answer == "" {
		return nil, entity.ErrEmptyAnswer
	}

	ctxzap.Info(ctx, "answer received from pipeline service",
		zap.Int("answer_length", len(resp.Answer)),
		zap.Int("source_count", len(resp.Sources)),
	)

	return &resp, nil
}

// IndexDocument uploads one document to the pipeline's index endpoint so
// it becomes part of the retrieval corpus. Not retried: re-running the
// indexer is the recovery path.
func (c *Connector) IndexDocument(ctx context.Context, filename string, content []byte) error {
	ctxzap.Info(ctx, "indexing document in pipeline service",
		zap.String("filename", filename),
		zap.Int("size", len(content)),
	)

	prepareBody := func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(content); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}
		return nil
	}

	if err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.IndexEndpoint, prepareBody, nil); err != nil {
		ctxzap.Error(ctx, "failed to index document", zap.Error(err))
		return err
	}

	ctxzap.Info(ctx, "document indexed successfully")
	return nil
}
