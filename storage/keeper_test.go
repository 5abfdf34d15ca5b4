/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/flames/games"
)

func record(n int) Record {
	return NewRecord(games.Play(fmt.Sprintf("name%d", n), "other"), when.Add(time.Duration(n)*time.Minute))
}

func TestKeeper_HistoryNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 3)

	for i := 0; i < 5; i++ {
		if _, err := k.AddHistory(ctx, "c1", record(i)); err != nil {
			t.Fatalf("AddHistory %d: %v", i, err)
		}
	}

	h, err := k.History(ctx, "c1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 3 {
		t.Fatalf("len = %d, want 3", len(h))
	}
	for i, want := range []string{"name4", "name3", "name2"} {
		if h[i].Name1 != want {
			t.Errorf("h[%d] = %s, want %s", i, h[i].Name1, want)
		}
	}
}

func TestKeeper_ClientsAreIsolated(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 0)

	_, _ = k.AddHistory(ctx, "c1", record(1))

	h, err := k.History(ctx, "c2")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 0 {
		t.Fatalf("c2 history = %v, want empty", h)
	}
}

func TestKeeper_ClearHistory(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 0)

	_, _ = k.AddHistory(ctx, "c1", record(1))

	if err := k.ClearHistory(ctx, "c1"); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	h, _ := k.History(ctx, "c1")
	if len(h) != 0 {
		t.Fatalf("history after clear = %v", h)
	}
}

func TestKeeper_AddHistoryRejectsInvalid(t *testing.T) {
	k := NewKeeper(NewMemoryStore(), 0)

	_, err := k.AddHistory(context.Background(), "c1", Record{Name1: "a"})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("err = %v, want ErrInvalidRecord", err)
	}
}

func TestKeeper_HistorySkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	k := NewKeeper(s, 0)

	raw := `[{"name1":"a","name2":"b","result":"F","meaning":"Friends","when":"2025-02-14T18:30:00Z"},
	{"name1":"","name2":"b","result":"F","meaning":"Friends","when":"2025-02-14T18:30:00Z"}]`
	_ = s.Set(ctx, "c1/"+HistoryKey, []byte(raw))

	h, err := k.History(ctx, "c1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 1 || h[0].Name1 != "a" {
		t.Fatalf("history = %+v", h)
	}
}

func TestKeeper_ImportHistory(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 4)

	_, _ = k.AddHistory(ctx, "c1", record(2))

	h, err := k.ImportHistory(ctx, "c1", []Record{record(1), record(5), record(3), record(0)})
	if err != nil {
		t.Fatalf("ImportHistory: %v", err)
	}

	got := make([]string, len(h))
	for i, r := range h {
		got[i] = r.Name1
	}
	want := []string{"name5", "name3", "name2", "name1"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
}

func TestKeeper_ImportHistoryAllOrNothing(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 0)

	_, err := k.ImportHistory(ctx, "c1", []Record{record(1), {Name1: "bad"}})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("err = %v, want ErrInvalidRecord", err)
	}

	h, _ := k.History(ctx, "c1")
	if len(h) != 0 {
		t.Fatalf("partial import written: %v", h)
	}
}

func TestKeeper_Session(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 0)

	s, err := k.LoadSession(ctx, "c1")
	if err != nil || s != nil {
		t.Fatalf("LoadSession on empty = %v, %v", s, err)
	}

	want := NewSession(games.Play("Steve", "Eve"), when)
	if err := k.SaveSession(ctx, "c1", want); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := k.LoadSession(ctx, "c1")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got.Name1 != "Steve" || got.Count != want.Count || len(got.Log) != len(want.Log) {
		t.Fatalf("session = %+v", got)
	}

	h, _ := k.History(ctx, "c1")
	if len(h) != 0 {
		t.Fatalf("saving a session touched history: %v", h)
	}
}

func TestKeeper_Prefs(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 0)

	p, err := k.Prefs(ctx, "c1")
	if err != nil {
		t.Fatalf("Prefs: %v", err)
	}
	if p != DefaultPrefs() {
		t.Fatalf("default prefs = %+v", p)
	}

	if err := k.SetPrefs(ctx, "c1", Prefs{Theme: ThemeLight, Sound: SoundOff}); err != nil {
		t.Fatalf("SetPrefs: %v", err)
	}

	p, _ = k.Prefs(ctx, "c1")
	if p.Theme != ThemeLight || p.Sound != SoundOff {
		t.Fatalf("prefs = %+v", p)
	}

	if err := k.SetPrefs(ctx, "c1", Prefs{Theme: "neon", Sound: SoundOn}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("SetPrefs(neon) err = %v", err)
	}
}

func TestKeeper_ClearSession(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 0)

	if err := k.ClearSession(ctx, "c1"); err != nil {
		t.Fatalf("ClearSession on empty: %v", err)
	}

	if err := k.SaveSession(ctx, "c1", NewSession(games.Play("Steve", "Eve"), when)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := k.SaveSession(ctx, "c2", NewSession(games.Play("Ann", "Bob"), when)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	if err := k.ClearSession(ctx, "c1"); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}

	if s, err := k.LoadSession(ctx, "c1"); err != nil || s != nil {
		t.Fatalf("LoadSession after clear = %v, %v", s, err)
	}
	if s, _ := k.LoadSession(ctx, "c2"); s == nil {
		t.Fatal("clearing c1 removed c2's session")
	}
}

func TestKeeper_ImportHistorySkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	k := NewKeeper(NewMemoryStore(), 0)

	_, _ = k.AddHistory(ctx, "c1", record(1))

	export := []Record{record(1), record(2), record(2), record(3)}

	if _, err := k.ImportHistory(ctx, "c1", export); err != nil {
		t.Fatalf("ImportHistory: %v", err)
	}
	h, err := k.ImportHistory(ctx, "c1", export)
	if err != nil {
		t.Fatalf("ImportHistory again: %v", err)
	}

	got := make([]string, len(h))
	for i, r := range h {
		got[i] = r.Name1
	}
	if strings.Join(got, ",") != "name3,name2,name1" {
		t.Fatalf("history = %v", got)
	}

	// same names at another time is a different play
	later := record(1)
	later.When = later.When.Add(time.Hour)

	h, err = k.ImportHistory(ctx, "c1", []Record{later})
	if err != nil {
		t.Fatalf("ImportHistory: %v", err)
	}
	if len(h) != 4 || h[0].Name1 != "name1" {
		t.Fatalf("history = %v", h)
	}
}
