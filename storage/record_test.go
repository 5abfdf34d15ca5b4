/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Seednode/flames/games"
)

var when = time.Date(2025, 2, 14, 18, 30, 0, 0, time.UTC)

func TestNewRecord(t *testing.T) {
	r := NewRecord(games.Play("Steve", "Eve"), when)

	if r.Result != "E" || r.Meaning != "Enemies" {
		t.Fatalf("record = %+v", r)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got, want := r.String(), "Steve & Eve — E — Enemies"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewRecord_NoSurvivor(t *testing.T) {
	r := NewRecord(games.Play("Anna", "Naan"), when)

	if r.Result != NoResult {
		t.Fatalf("Result = %q, want %q", r.Result, NoResult)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRecord_Validate(t *testing.T) {
	ok := Record{Name1: "a", Name2: "b", Result: "L", Meaning: "Lovers", When: when}

	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"empty name1", func(r *Record) { r.Name1 = " " }},
		{"empty name2", func(r *Record) { r.Name2 = "" }},
		{"zero time", func(r *Record) { r.When = time.Time{} }},
		{"bad label", func(r *Record) { r.Result = "X" }},
		{"mismatched meaning", func(r *Record) { r.Meaning = "Friends" }},
	}

	for _, tt := range tests {
		r := ok
		tt.mutate(&r)

		if err := r.Validate(); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("%s: err = %v, want ErrInvalidRecord", tt.name, err)
		}
	}

	if err := ok.Validate(); err != nil {
		t.Errorf("valid record: %v", err)
	}
}

func TestRecord_JSON(t *testing.T) {
	r := Record{Name1: "a", Name2: "b", Result: "M", Meaning: "Marriage", When: when}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"name1":"a","name2":"b","result":"M","meaning":"Marriage","when":"2025-02-14T18:30:00Z"}`
	if string(b) != want {
		t.Fatalf("json = %s\nwant  %s", b, want)
	}

	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.When.Equal(when) || back.Result != "M" {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestRecord_UnmarshalLooseTimestamps(t *testing.T) {
	inputs := []string{
		`"2025-02-14T18:30:00.000Z"`,
		`"2025-02-14 18:30:00"`,
		`"02/14/2025 18:30:00"`,
	}

	for _, in := range inputs {
		var r Record
		err := json.Unmarshal([]byte(`{"name1":"a","name2":"b","result":"F","meaning":"Friends","when":`+in+`}`), &r)
		if err != nil {
			t.Errorf("%s: %v", in, err)
			continue
		}
		if !r.When.Equal(when) {
			t.Errorf("%s: When = %v, want %v", in, r.When, when)
		}
	}
}

func TestRecord_UnmarshalBadTimestamp(t *testing.T) {
	var r Record

	err := json.Unmarshal([]byte(`{"name1":"a","name2":"b","when":"not a date"}`), &r)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("err = %v, want ErrInvalidRecord", err)
	}
}

func TestSession_JSON(t *testing.T) {
	s := NewSession(games.Play("Steve", "Eve"), when)

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Session
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.Count != 2 || len(back.Log) != 5 || back.Result != "E" {
		t.Fatalf("round trip = %+v", back)
	}
	if err := back.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
