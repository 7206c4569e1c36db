package logger

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = &ZapLogger{}

const (
	requestIDFieldName = "requestID"
	actionFieldName     = "action"
	operationIDFieldName = "operationID"
	txHashFieldName     = "xrplTxHash"
)

// ZapLoggerConfig is ZapLogger config.
type ZapLoggerConfig struct {
	Level  string
	Format string
}

// DefaultZapLoggerConfig returns default ZapLoggerConfig.
func DefaultZapLoggerConfig() ZapLoggerConfig {
	return ZapLoggerConfig{
		Level:  "info",
		Format: "console",
	}
}

// ZapLogger is logger wrapper with an ability to add error logs metric record.
type ZapLogger struct {
	zapLogger *zap.Logger
}

// NewZapLoggerFromLogger returns a new instance of the ZapLogger.
func NewZapLoggerFromLogger(zapLogger *zap.Logger) *ZapLogger {
	return &ZapLogger{
		zapLogger: zapLogger,
	}
}

// NewZapLogger creates a new instance of the ZapLogger from the given config.
func NewZapLogger(cfg ZapLoggerConfig) (*ZapLogger, error) {
	logLevel, err := stringToLoggerLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(logLevel),
		Development:      false,
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	zapLogger, err := zapCfg.Build(zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build zap logger from the config, config:%+v", zapCfg)
	}

	return &ZapLogger{
		zapLogger: zapLogger,
	}, nil
}

// Debug logs a message at DebugLevel. The message includes any fields passed at the log site, as well as any
// fields carried by the context.
func (z *ZapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.zapLogger.Debug(msg, fieldToZapField(ctx, fields...)...)
}

// Info logs a message at InfoLevel. The message includes any fields passed at the log site, as well as any
// fields carried by the context.
func (z *ZapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.zapLogger.Info(msg, fieldToZapField(ctx, fields...)...)
}

// Warn logs a message at WarnLevel. The message includes any fields passed at the log site, as well as any
// fields carried by the context.
func (z *ZapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.zapLogger.Warn(msg, fieldToZapField(ctx, fields...)...)
}

// Error logs a message at ErrorLevel. The message includes any fields passed at the log site, as well as any
// fields carried by the context.
func (z *ZapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.zapLogger.Error(msg, fieldToZapField(ctx, fields...)...)
}

// Named adds a new path segment to the logger's name. Segments are joined by periods. By default, Loggers are
// unnamed.
func (z *ZapLogger) Named(name string) *ZapLogger {
	return NewZapLoggerFromLogger(z.zapLogger.Named(name))
}

func fieldToZapField(ctx context.Context, fields ...Field) []zap.Field {
	zapFields := lo.Map(fields, func(field Field, _ int) zap.Field {
		return zap.Field{
			Key:       field.Key,
			Type:      zapcore.FieldType(field.Type),
			Integer:   field.Integer,
			String:    field.String,
			Interface: field.Interface,
		}
	})

	if requestID := GetRequestID(ctx); requestID != "" {
		zapFields = append(zapFields, zap.String(requestIDFieldName, requestID))
	}
	if action := GetContractAction(ctx); action != "" {
		zapFields = append(zapFields, zap.String(actionFieldName, action))
	}
	if operationID, ok := GetOperationID(ctx); ok {
		zapFields = append(zapFields, zap.Uint64(operationIDFieldName, operationID))
	}
	if txHash := GetTxHash(ctx); txHash != "" {
		zapFields = append(zapFields, zap.String(txHashFieldName, txHash))
	}

	return zapFields
}

// stringToLoggerLevel converts the string level to zapcore.Level.
func stringToLoggerLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, errors.Errorf("unknown log level: %q", level)
	}
}
