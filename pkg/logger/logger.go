// Package logger builds the process-wide zap logger and the HTTP access log.
package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/study-crew/peer-assist-api/pkg/config"
	"github.com/study-crew/peer-assist-api/pkg/middleware/requestid"
)

// New builds a zap logger from the environment and log config. Invalid
// levels fall back to info.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Log.Format == "console" {
		zapCfg.Encoding = "console"
	} else {
		zapCfg.Encoding = "json"
	}

	level := zapcore.InfoLevel
	if cfg.Log.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			level = zapcore.InfoLevel
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// GinMiddleware writes one structured access log line per request.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		l.Info("http_request", fields...)
	}
}
