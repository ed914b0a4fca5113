// Package session holds the interactive session state: the editable bid profile
// and the most recent estimate, which goes stale when its inputs change.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"afrr-backtest/internal/backtest"
	"afrr-backtest/internal/bidprofile"
)

var (
	ErrResultNotFound = errors.New("result not found")
	// ErrStaleResult means the result was computed from parameters or a bid
	// profile that have since changed.
	ErrStaleResult = errors.New("result is stale")
)

// maxRetired bounds the remembered IDs of superseded results.
const maxRetired = 256

// Entry is one stored estimate.
type Entry struct {
	ID          string
	Fingerprint string
	ComputedAt  time.Time
	Result      *backtest.Result

	profileVersion uint64
}

type Session struct {
	mu      sync.Mutex
	profile *bidprofile.Profile
	version uint64

	current *Entry
	retired map[string]string // id -> fingerprint
	order   []string

	now func() time.Time
}

func New(days [7]string) *Session {
	return &Session{
		profile: bidprofile.New(days),
		retired: map[string]string{},
		now:     time.Now,
	}
}

// ProfileTable renders the current bid profile.
func (s *Session) ProfileTable() bidprofile.Table {
	return s.profile.Table()
}

// SetCell edits one bid profile cell.
func (s *Session) SetCell(interval, day string, kw float64) error {
	return s.edit(func(p *bidprofile.Profile) error { return p.Set(interval, day, kw) })
}

// Fill writes kw into every bid profile cell.
func (s *Session) Fill(kw float64) error {
	return s.edit(func(p *bidprofile.Profile) error { return p.Fill(kw) })
}

// ReplaceProfile overwrites the bid profile from a table.
func (s *Session) ReplaceProfile(t bidprofile.Table) error {
	return s.edit(func(p *bidprofile.Profile) error { return p.Replace(t) })
}

// edit applies fn and invalidates the current result when the profile changed.
func (s *Session) edit(fn func(*bidprofile.Profile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.profile.Snapshot()
	if err := fn(s.profile); err != nil {
		return err
	}
	if !before.Equal(s.profile) {
		s.version++
	}
	return nil
}

// Snapshot returns a read-consistent copy of the bid profile for one
// computation, with the version it was taken at.
func (s *Session) Snapshot() (*bidprofile.Profile, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Snapshot(), s.version
}

// Store records res as the current result. The previous result is retired and
// stays resolvable only while it has the same fingerprint as the new one.
func (s *Session) Store(params backtest.Params, profile *bidprofile.Profile, version uint64, res *backtest.Result) *Entry {
	e := &Entry{
		ID:             uuid.NewString(),
		Fingerprint:    Fingerprint(params, profile),
		ComputedAt:     s.now().UTC(),
		Result:         res,
		profileVersion: version,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.retire(s.current)
	}
	s.current = e
	return e
}

func (s *Session) retire(e *Entry) {
	s.retired[e.ID] = e.Fingerprint
	s.order = append(s.order, e.ID)
	if len(s.order) > maxRetired {
		delete(s.retired, s.order[0])
		s.order = s.order[1:]
	}
}

// Current returns the latest result.
func (s *Session) Current() (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrResultNotFound
	}
	if s.current.profileVersion != s.version {
		return nil, ErrStaleResult
	}
	return s.current, nil
}

// Result resolves a result by ID. Results superseded by a computation with
// different inputs, or computed before a bid profile edit, are stale.
func (s *Session) Result(id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current
	switch {
	case cur != nil && cur.ID == id:
	case s.retired[id] != "":
		if cur == nil || s.retired[id] != cur.Fingerprint {
			return nil, ErrStaleResult
		}
	default:
		return nil, ErrResultNotFound
	}
	if cur.profileVersion != s.version {
		return nil, ErrStaleResult
	}
	return cur, nil
}

// Fingerprint identifies the inputs of a computation.
func Fingerprint(params backtest.Params, profile *bidprofile.Profile) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(params)
	if profile != nil {
		_ = enc.Encode(profile.Table())
	}
	return hex.EncodeToString(h.Sum(nil))
}
