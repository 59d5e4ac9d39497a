// Package observability records limiter decisions in the log and the audit
// trail.
package observability

import (
	"context"
	"log/slog"

	"clientview/pkg/attrs"
	"clientview/pkg/platform/audit"
	"clientview/pkg/requestcontext"
)

// AuditPublisher is the subset of the audit publisher the limiter needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit writes event as an audit-flavoured log line and, when publisher is
// set, as an audit event. The subject is the bucket key, or the client IP when
// no key was given; "reason" becomes the event reason.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	subject := attrs.ExtractString(attrList, "key")
	if subject == "" {
		subject = attrs.ExtractString(attrList, "ip")
	}

	if logger != nil {
		args := make([]any, 0, len(attrList)+6)
		args = append(args, attrList...)
		args = append(args, "request_id", requestID, "event", string(event), "log_type", "audit")
		logger.InfoContext(ctx, string(event), args...)
	}
	if publisher == nil {
		return
	}

	err := publisher.Emit(ctx, audit.Event{
		Action:    string(event),
		Subject:   subject,
		RequestID: requestID,
		Reason:    attrs.ExtractString(attrList, "reason"),
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
			"request_id", requestID,
		)
	}
}
