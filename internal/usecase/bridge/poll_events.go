package bridge

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
)

const pollPageSize = 100

// PollEvents fetches the next page of the tenant's labeler event stream and
// advances the stored cursor. An unconfigured or sync-disabled tenant is a
// normal condition and yields an empty result, not an error.
func (s *Service) PollEvents(ctx context.Context, tenantID string) (PollResult, error) {
	if ctx == nil {
		return PollResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return PollResult{}, errs.Wrap(err, "check context")
	}

	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return PollResult{}, errors.New("tenant id is required")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "bridge.poll"),
		slog.String("tenant_id", tenantID),
	)

	cred, err := s.creds.Get(ctx, tenantID)
	if err != nil {
		return PollResult{}, errs.Wrap(err, "resolve credential")
	}
	if cred == nil {
		logging.Debug(logCtx, "tenant has no labeler credential, skipping poll")
		return PollResult{}, nil
	}

	state, err := s.syncStates.Get(ctx, tenantID)
	if errors.Is(err, ports.ErrSyncStateNotFound) {
		return PollResult{}, nil
	}
	if err != nil {
		return PollResult{}, errs.Wrap(err, "read sync state")
	}
	if !state.SyncEnabled {
		return PollResult{}, nil
	}

	client, err := s.newClient(*cred)
	if err != nil {
		return PollResult{}, err
	}

	cursor := ""
	if state.LastSyncedCursor != nil {
		cursor = *state.LastSyncedCursor
	}

	resp, err := client.QueryEvents(ctx, ozone.QueryEventsParams{
		Cursor:        cursor,
		Limit:         pollPageSize,
		SortDirection: "asc",
	})
	if err != nil {
		// Cursor untouched: the same page is retried next cycle.
		return PollResult{}, err
	}

	// A response without a cursor never advances the stored one, even when
	// it carries events.
	if resp.Cursor != "" {
		syncedAt := s.nowUTCString()
		if err := s.syncStates.Upsert(ctx, tenantID, ports.SyncStatePatch{
			Cursor:   &resp.Cursor,
			SyncedAt: &syncedAt,
		}); err != nil {
			return PollResult{}, errs.Wrap(err, "advance sync cursor")
		}
	}

	if len(resp.Events) > 0 {
		logging.Info(logCtx, "polled labeler events",
			slog.Int("count", len(resp.Events)),
			slog.String("cursor", resp.Cursor),
		)
	}
	return PollResult{Events: resp.Events, NewCursor: resp.Cursor}, nil
}
