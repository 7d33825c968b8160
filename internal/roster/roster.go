package roster

import (
	"log"
	"sync"
	"time"

	"checkin-desk/internal/models"
)

// Source is the slice of the sheets client the roster needs.
type Source interface {
	ReadRows(sheet string) ([][]string, error)
}

const sheetName = "Participants"

// DefaultCategory is used when the Category column is blank.
const DefaultCategory = "Pre-registered"

// Store serves the selectable participant list, cached with a TTL.
// The roster rarely changes mid-event, so staleness up to the TTL is
// preferred over hammering the Sheets API on every page load.
type Store struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	cached    []models.Participant
	fetchedAt time.Time
	hasCache  bool
}

func New(src Source, ttl time.Duration) *Store {
	return &Store{src: src, ttl: ttl, now: time.Now}
}

// List returns the deduplicated roster. Any fetch failure degrades to an
// empty list so the desk can fall back to walk-in-only; failures are never
// cached, the next call refetches.
func (s *Store) List() []models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCache && s.now().Sub(s.fetchedAt) < s.ttl {
		out := make([]models.Participant, len(s.cached))
		copy(out, s.cached)
		return out
	}

	rows, err := s.src.ReadRows(sheetName)
	if err != nil {
		log.Printf("roster: fetch failed: %v", err)
		return []models.Participant{}
	}

	s.cached = dedupe(rows)
	s.fetchedAt = s.now()
	s.hasCache = true

	out := make([]models.Participant, len(s.cached))
	copy(out, s.cached)
	return out
}

// Invalidate drops the cache; the next List refetches.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.hasCache = false
	s.mu.Unlock()
}

// dedupe keeps the first occurrence of each name. Names are compared
// byte-exact: the source treats them as opaque strings, so no case folding
// or trimming is applied here.
func dedupe(rows [][]string) []models.Participant {
	seen := map[string]bool{}
	out := []models.Participant{}
	// header row at index 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 1 || row[0] == "" {
			continue
		}
		name := row[0]
		if seen[name] {
			continue
		}
		seen[name] = true
		p := models.Participant{Name: name, Category: DefaultCategory}
		if len(row) > 1 && row[1] != "" {
			p.Category = row[1]
		}
		out = append(out, p)
	}
	return out
}
