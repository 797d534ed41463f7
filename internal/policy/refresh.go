package policy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/waja/dagsorden-harvester/internal/telemetry"
)

// Refresh re-ingests every meeting inside a days-back window, forcing
// fresh downloads to pick up edits to already-seen meetings. It walks
// years newest-first and halts the entire walk the moment a listing
// date token or a freshly-extracted schedule date falls behind the
// cutoff. This watermark scan assumes listings are reverse-
// chronological; the ingester it is given must be built in force mode.
type Refresh struct {
	Discoverer Discoverer
	Ingester   Ingester
	Logger     *zap.Logger
	// Days is the window size; cutoff = today - Days.
	Days int
	// Now is split out for tests; defaults to time.Now.
	Now func() time.Time
}

// Run executes one refresh pass.
func (p *Refresh) Run(ctx context.Context) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	// Listing dates carry no time of day, so the cutoff must not either:
	// a meeting dated exactly Days ago is still inside the window.
	cutoff := dateOnly(now().AddDate(0, 0, -p.Days))

	years, err := p.Discoverer.Years(ctx)
	if err != nil {
		return fmt.Errorf("discover years: %w", err)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	p.Logger.Info("refresh starting",
		zap.Time("cutoff", cutoff),
		zap.Ints("years", years))

	for _, year := range years {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		entries, err := p.Discoverer.Entries(ctx, year)
		if err != nil {
			p.Logger.Error("[error] year discovery failed",
				zap.Int("year", year),
				zap.Error(err))
			continue
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d, ok := ParseDate(entry.RawDate); ok && d.Before(cutoff) {
				p.Logger.Info("[stop] listing date behind cutoff",
					zap.String("listing_date", d.Format(time.DateOnly)),
					zap.String("cutoff", cutoff.Format(time.DateOnly)))
				return nil
			}

			rec, err := p.Ingester.Ingest(ctx, entry.URL)
			if err != nil {
				p.Logger.Error("[error] refresh ingest failed",
					zap.String("url", entry.URL),
					zap.Error(err))
				continue
			}
			telemetry.CountMeetingIngested("refresh")
			p.Logger.Info("[refresh] ingested",
				zap.String("meeting_id", rec.MeetingID),
				zap.Int("items", rec.ItemsCount),
				zap.Int("attachments", rec.AttachmentsCountTotal))

			if d, ok := ParseDate(rec.ScheduleText); ok && d.Before(cutoff) {
				p.Logger.Info("[stop] meeting date behind cutoff",
					zap.String("meeting_date", d.Format(time.DateOnly)),
					zap.String("cutoff", cutoff.Format(time.DateOnly)))
				return nil
			}
		}
	}
	return ctx.Err()
}
