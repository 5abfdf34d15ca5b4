/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/Seednode/flames/games"
)

// NoResult is stored in place of a label when every letter cancelled.
const NoResult = "—"

// Record is one finished play as kept in history.
type Record struct {
	Name1   string
	Name2   string
	Result  string
	Meaning string
	When    time.Time
}

// NewRecord captures r at time when.
func NewRecord(r games.Result, when time.Time) Record {
	return Record{
		Name1:   r.Name1,
		Name2:   r.Name2,
		Result:  r.ResultText(),
		Meaning: r.Meaning,
		When:    when.UTC(),
	}
}

// Validate reports ErrInvalidRecord if any field is missing or inconsistent.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Name1) == "" || strings.TrimSpace(r.Name2) == "":
		return fmt.Errorf("%w: both names are required", ErrInvalidRecord)
	case r.When.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	case r.Result == NoResult:
		return nil
	}

	l := games.Label(r.Result)
	if !l.Valid() {
		return fmt.Errorf("%w: unknown result %q", ErrInvalidRecord, r.Result)
	}
	if r.Meaning != l.Meaning() {
		return fmt.Errorf("%w: meaning %q does not match result %s", ErrInvalidRecord, r.Meaning, r.Result)
	}

	return nil
}

// String matches the share text shown for a history entry.
func (r Record) String() string {
	return fmt.Sprintf("%s & %s — %s — %s", r.Name1, r.Name2, r.Result, r.Meaning)
}

type recordJSON struct {
	Name1   string `json:"name1"`
	Name2   string `json:"name2"`
	Result  string `json:"result"`
	Meaning string `json:"meaning"`
	When    string `json:"when"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Name1:   r.Name1,
		Name2:   r.Name2,
		Result:  r.Result,
		Meaning: r.Meaning,
		When:    r.When.UTC().Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON accepts any timestamp layout dateparse understands, so
// exports from older clients (locale strings, epoch millis) still import.
// Timestamps without a zone are read as UTC.
func (r *Record) UnmarshalJSON(b []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var when time.Time
	if raw.When != "" {
		t, err := dateparse.ParseIn(raw.When, time.UTC)
		if err != nil {
			return fmt.Errorf("%w: timestamp %q: %v", ErrInvalidRecord, raw.When, err)
		}
		when = t.UTC()
	}

	*r = Record{
		Name1:   raw.Name1,
		Name2:   raw.Name2,
		Result:  raw.Result,
		Meaning: raw.Meaning,
		When:    when,
	}

	return nil
}

// Session is the most recent play, restored on reload.
type Session struct {
	Record
	Log   []string
	Count int
}

// NewSession captures r at time when.
func NewSession(r games.Result, when time.Time) Session {
	return Session{
		Record: NewRecord(r, when),
		Log:    append([]string(nil), r.Log...),
		Count:  r.Count,
	}
}

type sessionJSON struct {
	Record json.RawMessage `json:"record"`
	Log    []string        `json:"log"`
	Count  int             `json:"count"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	rec, err := json.Marshal(s.Record)
	if err != nil {
		return nil, err
	}

	return json.Marshal(sessionJSON{Record: rec, Log: s.Log, Count: s.Count})
}

func (s *Session) UnmarshalJSON(b []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var rec Record
	if len(raw.Record) > 0 {
		if err := json.Unmarshal(raw.Record, &rec); err != nil {
			return err
		}
	}

	*s = Session{Record: rec, Log: raw.Log, Count: raw.Count}

	return nil
}

// Validate checks the embedded record and the count.
func (s Session) Validate() error {
	if err := s.Record.Validate(); err != nil {
		return err
	}
	if s.Count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidRecord, s.Count)
	}

	return nil
}
