// Package policy implements the three traversal policies that drive
// discovery and ingestion: incremental (frontpage head), backfill
// (all years, oldest first) and refresh (windowed forced re-ingest,
// newest first). A failure on one candidate never aborts a run.
package policy

import (
	"context"

	"go.uber.org/zap"

	"github.com/waja/dagsorden-harvester/internal/listing"
	"github.com/waja/dagsorden-harvester/internal/meeting"
	"github.com/waja/dagsorden-harvester/internal/telemetry"
)

// Discoverer finds candidate meeting links.
type Discoverer interface {
	Years(ctx context.Context) ([]int, error)
	Entries(ctx context.Context, year int) ([]listing.Entry, error)
	Frontpage(ctx context.Context, limit int) ([]listing.Entry, error)
}

// Ingester materializes one meeting.
type Ingester interface {
	Ingest(ctx context.Context, meetingURL string) (*meeting.Record, error)
}

// Ledger answers whether a meeting is already materialized on disk.
// It is consulted before any network work for a candidate.
type Ledger interface {
	Exists(meetingID string) bool
}

// ingestEntries walks entries in order. With skipExisting, candidates
// whose id resolves to an existing record are skipped without any
// fetch. Ingest failures are logged and the walk continues. Returns
// how many meetings were ingested.
func ingestEntries(ctx context.Context, entries []listing.Entry, ing Ingester, ledger Ledger, logger *zap.Logger, policyName string, skipExisting bool) int {
	ingested := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ingested
		}
		if skipExisting {
			if id, ok := meeting.ParseIDFromURL(entry.URL); ok && ledger.Exists(id) {
				logger.Info("[skip] already ingested", zap.String("meeting_id", id))
				continue
			}
		}
		rec, err := ing.Ingest(ctx, entry.URL)
		if err != nil {
			logger.Error("[error] ingest failed",
				zap.String("url", entry.URL),
				zap.Error(err))
			continue
		}
		telemetry.CountMeetingIngested(policyName)
		logger.Info("[ok] ingested",
			zap.String("meeting_id", rec.MeetingID),
			zap.Int("items", rec.ItemsCount),
			zap.Int("attachments", rec.AttachmentsCountTotal))
		ingested++
	}
	return ingested
}

// printEntries lists discovered URLs without ingesting anything.
func printEntries(entries []listing.Entry, logger *zap.Logger) {
	for _, entry := range entries {
		logger.Info("[found]", zap.String("url", entry.URL), zap.String("date", entry.RawDate))
	}
}
