// Package meeting defines the durable record types produced by the
// ingestion pipeline and the on-disk store that serves as its
// idempotency ledger.
package meeting

import "time"

// Kind classifies a meeting document.
type Kind string

// Meeting document kinds. The source renders "Dagsorden" (agenda) or
// "Referat" (minutes) in the page heading.
const (
	KindAgenda  Kind = "agenda"
	KindMinutes Kind = "minutes"
	KindUnknown Kind = "unknown"
)

// FileRef points at one downloaded artifact. SHA256, Size and Mime are
// populated once the bytes exist locally; a FileRef with an empty
// SHA256 marks an artifact whose download was attempted and failed.
type FileRef struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	SHA256 string `json:"sha256,omitempty"`
	Size   int64  `json:"size,omitempty"`
	Mime   string `json:"mime,omitempty"`
}

// AttachmentRef is a supporting file referenced from an agenda item.
type AttachmentRef struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	File  FileRef `json:"file"`
}

// AudioRef is an audio recording referenced from an agenda item.
type AudioRef struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	File  FileRef `json:"file"`
}

// ItemRecord is one agenda item within a meeting. Index is nil when the
// item number could not be read from the page.
type ItemRecord struct {
	ItemID       string          `json:"item_id"`
	Index        *int            `json:"index"`
	Title        string          `json:"title,omitempty"`
	CaseNumber   string          `json:"case_number,omitempty"`
	ItemDocument FileRef         `json:"item_document"`
	Attachments  []AttachmentRef `json:"attachments"`
	Audio        []AudioRef      `json:"audio"`
}

// ErrorEntry records one recovered sub-failure during ingestion.
type ErrorEntry struct {
	Stage      string `json:"stage"`
	ItemID     string `json:"item_id,omitempty"`
	ArtifactID string `json:"artifact_id,omitempty"`
	Message    string `json:"message"`
}

// Record is the complete metadata for one ingested meeting. It is
// assembled in memory during a single ingestion attempt and becomes
// durable when the store serializes it; it is never mutated afterwards.
// Counts reflect artifacts attempted, not necessarily succeeded — the
// Errors list carries the deficit.
type Record struct {
	MeetingID             string       `json:"meeting_id"`
	MeetingURL            string       `json:"meeting_url"`
	Kind                  Kind         `json:"kind"`
	Committee             string       `json:"committee,omitempty"`
	Place                 string       `json:"place,omitempty"`
	ScheduleText          string       `json:"schedule_text,omitempty"`
	FullDocument          FileRef      `json:"full_document"`
	Items                 []ItemRecord `json:"items"`
	ItemsCount            int          `json:"items_count"`
	AttachmentsCountTotal int          `json:"attachments_count_total"`
	AudioCountTotal       int          `json:"audio_count_total"`
	FetchedAt             time.Time    `json:"fetched_at"`
	Errors                []ErrorEntry `json:"errors"`
}

// Totals recomputes the attempted-artifact counters from the item list.
func (r *Record) Totals() {
	r.ItemsCount = len(r.Items)
	r.AttachmentsCountTotal = 0
	r.AudioCountTotal = 0
	for i := range r.Items {
		r.AttachmentsCountTotal += len(r.Items[i].Attachments)
		r.AudioCountTotal += len(r.Items[i].Audio)
	}
}
