// Package ingest materializes one meeting on disk: the full-meeting
// document, a document per agenda item, attachments, optionally audio,
// and one metadata record written after every sub-fetch has been
// attempted. Sub-failures are folded into the record's error list;
// only an unresolvable meeting identifier aborts an ingestion.
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/waja/dagsorden-harvester/internal/fetch"
	"github.com/waja/dagsorden-harvester/internal/meeting"
)

// Artifact file names within a meeting directory.
const (
	fullDocumentName = "full.pdf"
	itemDocumentName = "item.pdf"
	itemsDirName     = "items"
	attachmentsDir   = "attachments"
	audioDirName     = "audio"
)

// Extractor produces a meeting record skeleton from a meeting page.
type Extractor interface {
	Extract(ctx context.Context, meetingURL string) (*meeting.Record, error)
}

// Config controls one orchestrator.
type Config struct {
	BaseURL   *url.URL
	WithAudio bool
	RPS       float64
	UserAgent string
	// Force re-downloads artifacts that already exist on disk. Used by
	// the refresh policy to pick up edits to already-seen meetings.
	Force bool
}

// Orchestrator combines the extractor and the fetcher to ingest
// meetings one at a time.
type Orchestrator struct {
	cfg       Config
	extractor Extractor
	store     *meeting.Store
	logger    *zap.Logger
	now       func() time.Time
}

// New builds an orchestrator writing under store's root.
func New(cfg Config, extractor Extractor, store *meeting.Store, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		extractor: extractor,
		store:     store,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IngestByID ingests a meeting known only by its GUID, via the
// portal's view route.
func (o *Orchestrator) IngestByID(ctx context.Context, meetingID string) (*meeting.Record, error) {
	id, ok := meeting.NormalizeGUID(meetingID)
	if !ok {
		return nil, &meeting.IdentifierMissingError{Scope: "meeting", Ref: meetingID}
	}
	return o.Ingest(ctx, ViewURL(o.cfg.BaseURL, id))
}

// Ingest extracts the meeting at meetingURL and fetches all of its
// artifacts, then writes the metadata record exactly once. Artifacts
// already on disk are re-validated, not re-downloaded, so re-invoking
// on a fully materialized meeting performs no network fetches.
func (o *Orchestrator) Ingest(ctx context.Context, meetingURL string) (*meeting.Record, error) {
	rec, err := o.extractor.Extract(ctx, meetingURL)
	if err != nil {
		return nil, fmt.Errorf("extract meeting: %w", err)
	}

	fetcher := fetch.New(fetch.Config{
		RPS:       o.cfg.RPS,
		UserAgent: o.cfg.UserAgent,
		Referer:   meetingURL,
		Force:     o.cfg.Force,
	})
	defer fetcher.Close()

	meetingDir := o.store.MeetingDir(rec.MeetingID)
	o.fetchFullDocument(ctx, fetcher, rec, meetingDir)
	for i := range rec.Items {
		o.fetchItem(ctx, fetcher, rec, &rec.Items[i], meetingDir)
	}

	rec.Totals()
	rec.FetchedAt = o.now()
	if err := o.store.Write(rec); err != nil {
		return nil, fmt.Errorf("write meeting record: %w", err)
	}
	o.logger.Info("meeting ingested",
		zap.String("meeting_id", rec.MeetingID),
		zap.Int("items", rec.ItemsCount),
		zap.Int("attachments", rec.AttachmentsCountTotal),
		zap.Int("errors", len(rec.Errors)))
	return rec, nil
}

func (o *Orchestrator) fetchFullDocument(ctx context.Context, fetcher *fetch.Fetcher, rec *meeting.Record, meetingDir string) {
	fullURL := FullDocumentURL(o.cfg.BaseURL, rec.MeetingID)
	target := filepath.Join(meetingDir, fullDocumentName)
	ref, err := fetcher.Fetch(ctx, fullURL, target)
	if err != nil {
		// Item metadata is independent of this artifact; keep going.
		rec.Errors = append(rec.Errors, meeting.ErrorEntry{
			Stage:   "full_document",
			Message: err.Error(),
		})
		ref = meeting.FileRef{URL: fullURL, Path: target}
	}
	rec.FullDocument = ref
}

func (o *Orchestrator) fetchItem(ctx context.Context, fetcher *fetch.Fetcher, rec *meeting.Record, item *meeting.ItemRecord, meetingDir string) {
	itemDir := filepath.Join(meetingDir, itemsDirName, item.ItemID)

	docTarget := filepath.Join(itemDir, itemDocumentName)
	if meeting.IsGUID(item.ItemID) {
		docURL := ItemDocumentURL(o.cfg.BaseURL, item.ItemID)
		ref, err := fetcher.Fetch(ctx, docURL, docTarget)
		if err != nil {
			rec.Errors = append(rec.Errors, meeting.ErrorEntry{
				Stage:   "item_document",
				ItemID:  item.ItemID,
				Message: err.Error(),
			})
			ref = meeting.FileRef{URL: docURL, Path: docTarget}
		}
		item.ItemDocument = ref
	} else {
		// A hash-fallback id cannot address the portal's PDF route.
		// The item is still recorded; only its document is skipped.
		item.ItemDocument = meeting.FileRef{Path: docTarget}
		rec.Errors = append(rec.Errors, meeting.ErrorEntry{
			Stage:   "item_document",
			ItemID:  item.ItemID,
			Message: "no item identifier, document skipped",
		})
	}

	for i := range item.Attachments {
		att := &item.Attachments[i]
		attURL := NormalizeAttachmentURL(att.File.URL)
		target := filepath.Join(itemDir, attachmentsDir, att.ID+".pdf")
		ref, err := fetcher.Fetch(ctx, attURL, target)
		if err != nil {
			rec.Errors = append(rec.Errors, meeting.ErrorEntry{
				Stage:      "attachment",
				ItemID:     item.ItemID,
				ArtifactID: att.ID,
				Message:    err.Error(),
			})
			ref = meeting.FileRef{URL: attURL, Path: target}
		}
		att.File = ref
	}

	if !o.cfg.WithAudio {
		item.Audio = []meeting.AudioRef{}
		return
	}
	for i := range item.Audio {
		aud := &item.Audio[i]
		target := filepath.Join(itemDir, audioDirName, aud.ID+".mp3")
		ref, err := fetcher.Fetch(ctx, aud.File.URL, target)
		if err != nil {
			rec.Errors = append(rec.Errors, meeting.ErrorEntry{
				Stage:      "audio",
				ItemID:     item.ItemID,
				ArtifactID: aud.ID,
				Message:    err.Error(),
			})
			ref = meeting.FileRef{URL: aud.File.URL, Path: target}
		}
		aud.File = ref
	}
}
