// Package line is an SDK-free client for the LINE Messaging API. Reply
// and push messages go out as raw JSON over the shared HTTP connector
// with the channel access token as bearer auth.
package line

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/config"
	"github.com/hwangtech/linebot-backend/internal/entity"
	"github.com/hwangtech/linebot-backend/internal/integration/common"
	pkghttp "github.com/hwangtech/linebot-backend/pkg/http"
)

const (
	replyEndpoint   = "/v2/bot/message/reply"
	pushEndpoint    = "/v2/bot/message/push"
	profileEndpoint = "/v2/bot/profile/"
	quotaEndpoint   = "/v2/bot/message/quota/consumption"
)

type Connector struct {
	config    config.LineConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LineConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Reply answers the event that issued replyToken with a single text
// message. Reply tokens are single-use and expire quickly, so delivery
// failures are returned to the caller without retrying.
func (c *Connector) Reply(ctx context.Context, replyToken, text string) error {
	req := &entity.LineReplyRequest{
		ReplyToken: replyToken,
		Messages:   []entity.TextMessage{entity.NewTextMessage(text)},
	}

	if err := c.connector.DoRequest(ctx, http.MethodPost, replyEndpoint, req, nil); err != nil {
		return fmt.Errorf("reply message failed: %w", err)
	}

	ctxzap.Info(ctx, "reply delivered", zap.Int("text_length", len(text)))
	return nil
}

// Push sends a text message to a user outside of any reply window.
func (c *Connector) Push(ctx context.Context, to, text string) error {
	req := &entity.LinePushRequest{
		To:       to,
		Messages: []entity.TextMessage{entity.NewTextMessage(text)},
	}

	if err := c.connector.DoRequest(ctx, http.MethodPost, pushEndpoint, req, nil); err != nil {
		return fmt.Errorf("push message failed: %w", err)
	}

	ctxzap.Info(ctx, "push delivered", zap.Int("text_length", len(text)))
	return nil
}

// GetProfile fetches the display profile of a user who interacted with
// the channel.
func (c *Connector) GetProfile(ctx context.Context, userID string) (*entity.LineProfile, error) {
	var profile entity.LineProfile
	if err := c.connector.DoRequest(ctx, http.MethodGet, profileEndpoint+userID, nil, &profile); err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &profile, nil
}

// GetQuota returns the number of messages the channel has sent this month.
func (c *Connector) GetQuota(ctx context.Context) (*entity.LineQuota, error) {
	var quota entity.LineQuota
	if err := c.connector.DoRequest(ctx, http.MethodGet, quotaEndpoint, nil, &quota); err != nil {
		return nil, fmt.Errorf("get quota failed: %w", err)
	}
	return &quota, nil
}
