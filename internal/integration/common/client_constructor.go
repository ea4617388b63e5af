package common

import (
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/config"
	pkgHTTP "github.com/hwangtech/linebot-backend/pkg/http"
)

// NewBaseConnector wires an outbound connector from the shared HTTP
// client config: timeouts, request logging and bearer auth.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	return pkgHTTP.NewConnector(
		cfg.Url,
		logger,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithDialTimeout(cfg.ConnTimeout),
		pkgHTTP.WithKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithBearerToken(cfg.Token),
	)
}
