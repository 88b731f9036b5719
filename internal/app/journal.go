package app

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"github.com/themis-iprm/themis/internal/application/port/output"
)

// JournalEntry is one line of journal.ndjson
type JournalEntry struct {
	ID           string `json:"id"`
	Ts           string `json:"ts"`
	Op           string `json:"op"`
	Role         string `json:"role"`
	Profile      string `json:"profile"`
	Step         int    `json:"step"`
	StepKey      string `json:"step_key,omitempty"`
	SessionValid bool   `json:"session_valid"`
}

// Journal appends wizard events to an NDJSON file.
// It implements output.EventSink.
type Journal struct {
	fs   afero.Fs
	path string

	mu      sync.Mutex
	entropy io.Reader
	// last is the greatest id on file, read before the first append
	last   ulid.ULID
	loaded bool
}

// NewJournal creates a journal writing to path on fs
func NewJournal(fs afero.Fs, path string) *Journal {
	return &Journal{
		fs:      fs,
		path:    path,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Path returns the journal file path
func (j *Journal) Path() string { return j.path }

// Record appends ev as one JSON line
func (j *Journal) Record(ctx context.Context, ev output.WizardEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	id, err := j.nextID(at)
	if err != nil {
		return fmt.Errorf("journal id: %w", err)
	}

	entry := JournalEntry{
		ID:           id.String(),
		Ts:           at.UTC().Format(time.RFC3339Nano),
		Op:           ev.Op,
		Role:         ev.Role,
		Profile:      ev.Profile,
		Step:         ev.StepIndex,
		StepKey:      ev.StepKey,
		SessionValid: ev.SessionValid,
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	if err := j.fs.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	f, err := j.fs.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		GetLogger().Warn("failed to fsync journal: %v", err)
	}
	j.last = id
	return nil
}

// nextID returns an id for at that sorts after every id already on file.
// Another process may have appended in the same millisecond, so a fresh id
// that does not sort after the last one is replaced by last's successor.
func (j *Journal) nextID(at time.Time) (ulid.ULID, error) {
	if !j.loaded {
		last, err := lastJournalID(j.fs, j.path)
		if err != nil {
			return ulid.ULID{}, err
		}
		j.last, j.loaded = last, true
	}

	id, err := ulid.New(ulid.Timestamp(at), j.entropy)
	if err != nil {
		return ulid.ULID{}, err
	}
	if id.Compare(j.last) > 0 {
		return id, nil
	}
	return successor(j.last)
}

// successor increments last's entropy, carrying into the next millisecond
// when the entropy is exhausted
func successor(last ulid.ULID) (ulid.ULID, error) {
	next := last
	for i := len(next) - 1; i >= 6; i-- {
		next[i]++
		if next[i] != 0 {
			return next, nil
		}
	}
	var id ulid.ULID
	if err := id.SetTime(last.Time() + 1); err != nil {
		return ulid.ULID{}, err
	}
	return id, nil
}

// lastJournalID returns the greatest valid id in the journal at path
func lastJournalID(fs afero.Fs, path string) (ulid.ULID, error) {
	entries, err := ReadJournal(fs, path, 0)
	if err != nil {
		return ulid.ULID{}, err
	}
	var last ulid.ULID
	for _, e := range entries {
		id, err := ulid.ParseStrict(e.ID)
		if err != nil {
			continue
		}
		if id.Compare(last) > 0 {
			last = id
		}
	}
	return last, nil
}

// ReadJournal returns the last limit entries of the journal at path, oldest first.
// limit <= 0 returns every entry. A missing journal is empty.
func ReadJournal(fs afero.Fs, path string, limit int) ([]JournalEntry, error) {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []JournalEntry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e JournalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			GetLogger().Warn("skipping malformed journal line %d: %v", line, err)
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
