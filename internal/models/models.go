package models

// Participant is one row of the Participants sheet. Category is the
// roster label shown at the desk ("Pre-registered", "CFT", "RSVP", ...).
type Participant struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// CheckInRecord is one row of the Logs sheet and of the local backup CSV.
// Timestamp uses the "2006-01-02 15:04:05" layout so that lexicographic
// order matches chronological order. Records are append-only.
type CheckInRecord struct {
	Timestamp string `json:"timestamp"`
	Session   string `json:"session"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// DedupKey identifies a record during local-to-remote reconciliation.
// Normal appends never consult it: the same person checking in twice
// produces two records on purpose.
func (r CheckInRecord) DedupKey() string {
	return r.Timestamp + "\x00" + r.Name
}

// WriteOutcome reports how far an append got.
type WriteOutcome int

const (
	// RemoteAndLocal means both sinks hold the record.
	RemoteAndLocal WriteOutcome = iota
	// LocalOnly means the remote write was given up on after retries;
	// the record lives in the backup file until the next sync.
	LocalOnly
)

func (o WriteOutcome) String() string {
	if o == LocalOnly {
		return "local_only"
	}
	return "remote_and_local"
}

// ValidationResult classifies a walk-in form submission.
type ValidationResult int

const (
	Ok ValidationResult = iota
	MissingFields
	InvalidEmail
	InvalidPhone
)

func (v ValidationResult) String() string {
	switch v {
	case Ok:
		return "ok"
	case MissingFields:
		return "missing_fields"
	case InvalidEmail:
		return "invalid_email"
	case InvalidPhone:
		return "invalid_phone"
	}
	return "unknown"
}
