package checkin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"checkin-desk/internal/logstore"
	"checkin-desk/internal/models"
	"checkin-desk/internal/notify"
	"checkin-desk/internal/util"
)

// ErrCodeMismatch is returned when the entered desk code does not match
// the session's configured code. No record is created past this point.
var ErrCodeMismatch = errors.New("session code mismatch")

// ValidationError carries the specific walk-in check that failed so the
// form can point at the right field.
type ValidationError struct {
	Reason models.ValidationResult
}

func (e *ValidationError) Error() string {
	return "walk-in validation failed: " + e.Reason.String()
}

// Result is a successful submission: the record as written plus whether
// the remote sink got it too.
type Result struct {
	Outcome models.WriteOutcome
	Record  models.CheckInRecord
}

// Pipeline orchestrates a submission: code check, field validation,
// dual-sink append, cache invalidation, admin notification. Codes are
// injected at construction so tests can supply their own.
type Pipeline struct {
	codes    map[string]string
	store    *logstore.Store
	notifier notify.Notifier

	// stamped at append time; replaceable in tests
	nowStamp func() string
}

func New(codes map[string]string, store *logstore.Store, notifier notify.Notifier) *Pipeline {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Pipeline{
		codes:    codes,
		store:    store,
		notifier: notifier,
		nowStamp: util.NowStamp,
	}
}

// SubmitPreRegistered checks a roster attendee in. The category comes
// from the roster row; identity beyond the shared session code is not
// re-verified.
func (p *Pipeline) SubmitPreRegistered(ctx context.Context, session, enteredCode, name, category string) (Result, error) {
	if !CheckSessionCode(p.codes, session, enteredCode) {
		return Result{}, ErrCodeMismatch
	}
	if name == "" {
		return Result{}, &ValidationError{Reason: models.MissingFields}
	}
	if category == "" {
		category = "Pre-registered"
	}
	return p.append(ctx, models.CheckInRecord{
		Session: session,
		Name:    name,
		Type:    category,
		Email:   "-",
		Phone:   "-",
	})
}

// SubmitWalkIn checks in an attendee who is not on the roster.
func (p *Pipeline) SubmitWalkIn(ctx context.Context, session, enteredCode, name, email, phone string) (Result, error) {
	if !CheckSessionCode(p.codes, session, enteredCode) {
		return Result{}, ErrCodeMismatch
	}
	if res := ValidateWalkIn(name, email, phone); res != models.Ok {
		return Result{}, &ValidationError{Reason: res}
	}
	return p.append(ctx, models.CheckInRecord{
		Session: session,
		Name:    name,
		Type:    "Walk-in",
		Email:   email,
		Phone:   phone,
	})
}

func (p *Pipeline) append(ctx context.Context, rec models.CheckInRecord) (Result, error) {
	rec.Timestamp = p.nowStamp()
	outcome, err := p.store.Append(ctx, rec)
	if err != nil {
		return Result{}, err
	}
	if outcome == models.LocalOnly {
		p.notifier.Notify(fmt.Sprintf("⚠️ Remote log unreachable: %s (%s) saved to backup only. Run a sync once the sheet is back.", rec.Name, rec.Session))
	}
	return Result{Outcome: outcome, Record: rec}, nil
}

// Recent is the live view: the session's latest check-ins, newest first.
func (p *Pipeline) Recent(session string, limit int) ([]models.CheckInRecord, error) {
	return p.store.Recent(session, limit)
}

// Sessions lists the configured session labels for the desk page.
func (p *Pipeline) Sessions() []string {
	out := make([]string, 0, len(p.codes))
	for label := range p.codes {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
