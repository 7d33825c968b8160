package logstore

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"checkin-desk/internal/models"
)

const SheetLogs = "Logs"

const (
	remoteAttempts = 3
	remoteBackoff  = time.Second
)

// Tabular is the slice of the sheets client the log store needs. The
// remote has no append primitive, so every write is a full read-modify-
// write of the Logs worksheet.
type Tabular interface {
	ReadRows(sheet string) ([][]string, error)
	OverwriteRows(sheet string, rows [][]string) error
}

// Store spans the remote Logs worksheet and the local CSV backup. The
// local sink is authoritative for durability, the remote for reads.
type Store struct {
	remote Tabular
	backup *Backup

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	cacheTTL time.Duration
	mu       sync.Mutex
	cached   []models.CheckInRecord
	cachedAt time.Time
	hasCache bool
}

func New(remote Tabular, backup *Backup, cacheTTL time.Duration) *Store {
	return &Store{
		remote:   remote,
		backup:   backup,
		cacheTTL: cacheTTL,
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Append persists one record. The local backup is written first and
// unconditionally; its failure is the only hard error here. The remote
// write is attempted up to three times with a fixed backoff, and giving
// up is a degraded success (LocalOnly), never a failure.
func (s *Store) Append(ctx context.Context, rec models.CheckInRecord) (models.WriteOutcome, error) {
	if err := s.backup.Append(rec); err != nil {
		return 0, fmt.Errorf("local sink: %w", err)
	}
	// The record is durable from here on; the live cache must reflect it
	// whatever the remote does.
	defer s.Invalidate()

	for attempt := 1; attempt <= remoteAttempts; attempt++ {
		ok, err := s.remoteAppend(rec)
		if ok {
			return models.RemoteAndLocal, nil
		}
		if err != nil {
			log.Printf("logstore: remote append attempt %d/%d: %v", attempt, remoteAttempts, err)
		}
		if attempt < remoteAttempts {
			if serr := s.sleep(ctx, remoteBackoff); serr != nil {
				// caller gone; the record is safe locally
				break
			}
		}
	}
	return models.LocalOnly, nil
}

// remoteAppend runs one read-modify-write cycle. Before overwriting it
// re-reads the row count: two desks writing at once would otherwise
// silently drop the earlier record. A count mismatch returns (false, nil)
// so the caller redoes the whole cycle against the fresh state.
func (s *Store) remoteAppend(rec models.CheckInRecord) (bool, error) {
	rows, err := s.remote.ReadRows(SheetLogs)
	if err != nil {
		return false, err
	}
	snapshot := len(rows)

	next := make([][]string, 0, snapshot+2)
	if snapshot == 0 {
		next = append(next, csvHeader)
	} else {
		next = append(next, rows...)
	}
	next = append(next, rowFromRecord(rec))

	verify, err := s.remote.ReadRows(SheetLogs)
	if err != nil {
		return false, err
	}
	if len(verify) != snapshot {
		log.Printf("logstore: concurrent remote write detected (%d -> %d rows), retrying", snapshot, len(verify))
		return false, nil
	}

	if err := s.remote.OverwriteRows(SheetLogs, next); err != nil {
		return false, err
	}
	return true, nil
}

// ReadAll is remote-first with local fallback. Remote and local are the
// same logical dataset; no merge happens on reads.
func (s *Store) ReadAll() ([]models.CheckInRecord, error) {
	rows, err := s.remote.ReadRows(SheetLogs)
	if err != nil {
		log.Printf("logstore: remote read failed, falling back to backup: %v", err)
		return s.backup.ReadAll()
	}
	recs := []models.CheckInRecord{}
	for i := 1; i < len(rows); i++ {
		recs = append(recs, recordFromRow(rows[i]))
	}
	return recs, nil
}

// CachedReadAll serves the live view. The TTL keeps page refreshes from
// hammering the remote; Append invalidates it so a submitter sees their
// own record immediately.
func (s *Store) CachedReadAll() ([]models.CheckInRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCache && s.now().Sub(s.cachedAt) < s.cacheTTL {
		out := make([]models.CheckInRecord, len(s.cached))
		copy(out, s.cached)
		return out, nil
	}

	recs, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	s.cached = recs
	s.cachedAt = s.now()
	s.hasCache = true

	out := make([]models.CheckInRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *Store) Invalidate() {
	s.mu.Lock()
	s.hasCache = false
	s.mu.Unlock()
}

// Recent returns the session's latest check-ins, newest first. The stamp
// layout sorts lexicographically in time order.
func (s *Store) Recent(session string, limit int) ([]models.CheckInRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	if session == "" {
		return []models.CheckInRecord{}, nil
	}
	recs, err := s.CachedReadAll()
	if err != nil {
		return nil, err
	}
	out := []models.CheckInRecord{}
	for _, r := range recs {
		if r.Session == session {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SyncLocalToRemote reconciles the backup file into the remote sheet:
// read both, concatenate remote-then-local, keep the first occurrence of
// each (Timestamp, Name) pair, write the merged set back. Running it
// twice in a row is a no-op the second time. Returns the merged total and
// how many backup records were new to the remote.
func (s *Store) SyncLocalToRemote() (total, added int, err error) {
	remoteRows, err := s.remote.ReadRows(SheetLogs)
	if err != nil {
		return 0, 0, fmt.Errorf("read remote log: %w", err)
	}
	remoteRecs := []models.CheckInRecord{}
	for i := 1; i < len(remoteRows); i++ {
		remoteRecs = append(remoteRecs, recordFromRow(remoteRows[i]))
	}

	localRecs, err := s.backup.ReadAll()
	if err != nil {
		return 0, 0, fmt.Errorf("read backup: %w", err)
	}

	seen := map[string]bool{}
	merged := []models.CheckInRecord{}
	for _, r := range append(remoteRecs, localRecs...) {
		k := r.DedupKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, r)
	}

	next := make([][]string, 0, len(merged)+1)
	next = append(next, csvHeader)
	for _, r := range merged {
		next = append(next, rowFromRecord(r))
	}
	if err := s.remote.OverwriteRows(SheetLogs, next); err != nil {
		return 0, 0, fmt.Errorf("write merged log: %w", err)
	}
	s.Invalidate()

	return len(merged), len(merged) - len(remoteRecs), nil
}

func rowFromRecord(r models.CheckInRecord) []string {
	return []string{r.Timestamp, r.Session, r.Name, r.Type, r.Email, r.Phone}
}

func recordFromRow(row []string) models.CheckInRecord {
	return models.CheckInRecord{
		Timestamp: get(row, 0),
		Session:   get(row, 1),
		Name:      get(row, 2),
		Type:      get(row, 3),
		Email:     get(row, 4),
		Phone:     get(row, 5),
	}
}

func get(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
