package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

type requestIDKey struct{}

// WithRequestID stores the request id used to correlate audit records
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With(slog.String("component", "audit"))}
}

func (al *Logger) LogAction(ctx context.Context, actorID int64, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.Int64("actor_id", actorID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, userID int64, username, status string) {
	al.LogAction(ctx, userID, "login", "session", username, status, "")
}

func (al *Logger) LogLogout(ctx context.Context, userID int64) {
	al.LogAction(ctx, userID, "logout", "session", "", "success", "")
}

func (al *Logger) LogUserChange(ctx context.Context, actorID int64, action string, targetID int64, status, details string) {
	al.LogAction(ctx, actorID, action, "user", strconv.FormatInt(targetID, 10), status, details)
}

func (al *Logger) LogDenied(ctx context.Context, actorID int64, reason string) {
	al.LogAction(ctx, actorID, "access_denied", "api", "", "denied", reason)
}
