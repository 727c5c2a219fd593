// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/hopenest/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work, then closes the mailer and Mongo.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if svc := appServices; svc != nil {
		svc.Reconciler.Stop(ctx)
		for _, l := range []*ratelimit.Limiter{svc.AuthLimiter, svc.GeneralLimiter, svc.UploadLimiter} {
			if l != nil {
				l.Close()
			}
		}
		if err := svc.Mailer.Close(); err != nil {
			logger.Warn("mailer close failed", zap.Error(err))
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
