package meeting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MetaFileName is the per-meeting metadata file. Its presence under
// <root>/<meeting_id>/ is the single source of truth for "already
// ingested" and is checked before any network call for that meeting.
const MetaFileName = "meta.json"

// Store lays meetings out under a root directory:
//
//	<root>/<meeting_id>/full.pdf
//	<root>/<meeting_id>/meta.json
//	<root>/<meeting_id>/items/<item_id>/...
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns a store.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create output root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// MeetingDir returns the directory for one meeting.
func (s *Store) MeetingDir(meetingID string) string {
	return filepath.Join(s.root, meetingID)
}

// MetaPath returns the metadata file path for one meeting.
func (s *Store) MetaPath(meetingID string) string {
	return filepath.Join(s.root, meetingID, MetaFileName)
}

// Exists reports whether the meeting's metadata record is on disk.
func (s *Store) Exists(meetingID string) bool {
	info, err := os.Stat(s.MetaPath(meetingID))
	return err == nil && !info.IsDir()
}

// Write serializes the record to <root>/<meeting_id>/meta.json. The
// write goes through a temp file and a rename so a crash mid-write
// cannot leave a partial file that Exists would treat as ingested.
func (s *Store) Write(rec *Record) error {
	if rec.MeetingID == "" {
		return &IdentifierMissingError{Scope: "meeting", Ref: rec.MeetingURL}
	}
	dir := s.MeetingDir(rec.MeetingID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create meeting dir %s: %w", dir, err)
	}
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meeting record: %w", err)
	}
	tmp, err := os.CreateTemp(dir, MetaFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp meta file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write meta %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close meta %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.MetaPath(rec.MeetingID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish meta for %s: %w", rec.MeetingID, err)
	}
	return nil
}

// Load reads a previously written record back from disk.
func (s *Store) Load(meetingID string) (*Record, error) {
	payload, err := os.ReadFile(s.MetaPath(meetingID))
	if err != nil {
		return nil, fmt.Errorf("read meta for %s: %w", meetingID, err)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode meta for %s: %w", meetingID, err)
	}
	return &rec, nil
}
