package logstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"checkin-desk/internal/models"
)

var csvHeader = []string{"Timestamp", "Session", "Name", "Type", "Email", "Phone"}

// Backup is the local CSV sink. It is the one write that must never be
// skipped: a record that made it here survives the remote being down for
// the whole event. Appends are serialized so concurrent HTTP handlers
// cannot interleave rows.
type Backup struct {
	path string
	mu   sync.Mutex
}

func NewBackup(path string) *Backup {
	return &Backup{path: path}
}

func (b *Backup) Path() string { return b.path }

// Append writes one record, emitting the header row only when the file is
// first created.
func (b *Backup) Append(rec models.CheckInRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat backup: %w", err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	row := []string{rec.Timestamp, rec.Session, rec.Name, rec.Type, rec.Email, rec.Phone}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush backup: %w", err)
	}
	return f.Sync()
}

// ReadAll returns every record in the backup file. A missing file is an
// empty log, not an error.
func (b *Backup) ReadAll() ([]models.CheckInRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Open(b.path)
	if os.IsNotExist(err) {
		return []models.CheckInRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	recs := []models.CheckInRecord{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		recs = append(recs, recordFromRow(row))
	}
	return recs, nil
}

// Export returns the raw CSV bytes for the admin download. A missing file
// exports as just the header.
func (b *Backup) Export() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return []byte("Timestamp,Session,Name,Type,Email,Phone\n"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	return data, nil
}
