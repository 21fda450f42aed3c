package scheduling

import (
	"context"
	"time"

	"recruiting-service/internal/model"
)

// reserveBlocks writes one BusyBlock per participant for the given window.
// Must run in the same transaction as the interview mutation it backs, so
// the conflict detector never sees a window where the reservation is missing.
func reserveBlocks(ctx context.Context, store Store, tenantID uint, participantIDs model.IDList, start, end time.Time, sourceID uint, reason string) error {
	blocks := make([]model.BusyBlock, 0, len(participantIDs))
	for _, userID := range participantIDs {
		blocks = append(blocks, model.BusyBlock{
			TenantID: tenantID,
			UserID:   userID,
			StartAt:  start,
			EndAt:    end,
			Source:   model.BusyBlockSourceInterview,
			SourceID: sourceID,
			Reason:   reason,
		})
	}
	return store.CreateBusyBlocks(ctx, blocks)
}

// releaseBlocks deletes every block reserved for the given source interview.
func releaseBlocks(ctx context.Context, store Store, tenantID, sourceID uint) error {
	return store.DeleteBusyBlocks(ctx, tenantID, model.BusyBlockSourceInterview, sourceID)
}
