package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"modbridge/internal/bootstrap/logging"
	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/errs"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
)

// Known emission event types, as the rule engine names them.
const (
	EmitTypeLabel           = "label"
	EmitTypeTakedown        = "takedown"
	EmitTypeReverseTakedown = "reverseTakedown"
	EmitTypeComment         = "comment"
	EmitTypeAcknowledge     = "acknowledge"
	EmitTypeEscalate        = "escalate"
)

// EmitEvent sends one moderation event to the tenant's labeler. The audit
// row is written PENDING before the network call and transitions to SUCCESS
// or RETRYABLE_ERROR afterwards; on failure the error is re-raised so the
// caller sees it too.
func (s *Service) EmitEvent(ctx context.Context, input EmitEventInput) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	tenantID := strings.TrimSpace(input.TenantID)
	if tenantID == "" {
		return errors.New("tenant id is required")
	}
	if strings.TrimSpace(input.SubjectDID) == "" {
		return errors.New("subject did is required")
	}

	cred, err := s.creds.Get(ctx, tenantID)
	if err != nil {
		return errs.Wrap(err, "resolve credential")
	}
	if cred == nil {
		return fmt.Errorf("%w: tenant %s", domainbridge.ErrNotConfigured, tenantID)
	}

	comment := resolveComment(input)
	event, err := buildOutboundEvent(input, comment)
	if err != nil {
		return err
	}

	var subject ozone.Subject
	if input.SubjectURI != "" {
		// Empty CID is accepted by the labeler for non-content subjects.
		subject = ozone.RecordSubject(input.SubjectURI, "")
	} else {
		subject = ozone.RepoSubject(input.SubjectDID)
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "bridge.emit"),
		slog.String("tenant_id", tenantID),
		slog.String("event_type", input.EventType),
	)

	auditID, err := s.audits.InsertPending(ctx, ports.EmittedEventRecord{
		TenantID:              tenantID,
		EventType:             input.EventType,
		SubjectDID:            optString(input.SubjectDID),
		SubjectURI:            optString(input.SubjectURI),
		PlatformActionID:      optString(input.PlatformActionID),
		PlatformCorrelationID: optString(input.PlatformCorrelationID),
	})
	if err != nil {
		return errs.Wrap(err, "insert pending emission")
	}

	client, err := s.newClient(*cred)
	if err != nil {
		s.failEmission(logCtx, auditID, err)
		return err
	}

	resp, err := client.EmitEvent(ctx, ozone.EmitRequest{
		Event:     event,
		Subject:   subject,
		CreatedBy: cred.DID,
	})
	if err != nil {
		s.failEmission(logCtx, auditID, err)
		return err
	}

	if err := s.audits.MarkSuccess(ctx, auditID, string(resp.Raw)); err != nil {
		return errs.Wrap(err, "mark emission success")
	}
	s.metrics.IncEmissions(ports.EmissionStatusSuccess)
	logging.Info(logCtx, "emission delivered",
		slog.String("audit_id", auditID),
		slog.Int64("labeler_event_id", resp.ID),
	)
	return nil
}

// failEmission records the terminal RETRYABLE_ERROR transition. A failure
// to record is logged but never masks the original error.
func (s *Service) failEmission(ctx context.Context, auditID string, cause error) {
	s.metrics.IncEmissions(ports.EmissionStatusRetryableError)
	if err := s.audits.MarkRetryable(ctx, auditID, cause.Error()); err != nil {
		logging.Error(ctx, "mark emission retryable failed",
			slog.String("audit_id", auditID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

// resolveComment applies the default policy-summary text. Comment events
// are the exception: a missing comment stays empty there, handled in
// buildOutboundEvent.
func resolveComment(input EmitEventInput) string {
	if input.Comment != nil {
		return *input.Comment
	}

	names := make([]string, 0, len(input.Policies))
	for _, p := range input.Policies {
		names = append(names, p.Name)
	}
	return "Platform moderation action: " + strings.Join(names, ", ")
}

func buildOutboundEvent(input EmitEventInput, comment string) (any, error) {
	switch input.EventType {
	case EmitTypeLabel:
		labels := input.Labels
		if labels == nil {
			labels = []string{}
		}
		negate := input.NegateLabels
		if negate == nil {
			negate = []string{}
		}
		return ozone.LabelEvent{
			Type:            ozone.EventTypeLabel,
			CreateLabelVals: labels,
			NegateLabelVals: negate,
			Comment:         comment,
		}, nil
	case EmitTypeTakedown:
		return ozone.TakedownEvent{
			Type:            ozone.EventTypeTakedown,
			Comment:         comment,
			DurationInHours: input.DurationInHours,
		}, nil
	case EmitTypeReverseTakedown:
		return ozone.ReverseTakedownEvent{
			Type:    ozone.EventTypeReverseTakedown,
			Comment: comment,
		}, nil
	case EmitTypeComment:
		// No default substitution here: an absent comment is sent empty.
		commentText := ""
		if input.Comment != nil {
			commentText = *input.Comment
		}
		return ozone.CommentEvent{
			Type:    ozone.EventTypeComment,
			Comment: commentText,
			Sticky:  false,
		}, nil
	case EmitTypeAcknowledge:
		return ozone.AcknowledgeEvent{
			Type:    ozone.EventTypeAcknowledge,
			Comment: comment,
		}, nil
	case EmitTypeEscalate:
		return ozone.EscalateEvent{
			Type:    ozone.EventTypeEscalate,
			Comment: comment,
		}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", input.EventType)
	}
}
