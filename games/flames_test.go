/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe!", "janedoe"},
		{"", ""},
		{"   ", ""},
		{"R2-D2", "rd"},
		{"ÉMILE", "mile"},
		{"o'Brien", "obrien"},
		{"AaBb", "aabb"},
	}

	for _, tt := range tests {
		got := Normalize(tt.in)
		if got.String() != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_EmptyIsNotNil(t *testing.T) {
	got := Normalize("")
	if got == nil || len(got) != 0 {
		t.Fatalf("Normalize(\"\") = %#v, want empty non-nil", got)
	}
}

func TestCancel_EarliestMatchWins(t *testing.T) {
	c := Cancel(Letters("aa"), Letters("a"))

	if !reflect.DeepEqual(c.CrossedA, []bool{true, false}) {
		t.Errorf("CrossedA = %v, want [true false]", c.CrossedA)
	}
	if !reflect.DeepEqual(c.CrossedB, []bool{true}) {
		t.Errorf("CrossedB = %v, want [true]", c.CrossedB)
	}
}

func TestCancel_NoCrossLetterPairing(t *testing.T) {
	c := Cancel(Letters("ab"), Letters("cd"))

	if got := c.Count(); got != 4 {
		t.Fatalf("Count() = %d, want 4", got)
	}
}

func TestCancel_Greedy(t *testing.T) {
	// b's first 'a' is consumed by a[0] even though a later pairing exists.
	c := Cancel(Letters("aba"), Letters("aab"))

	if !reflect.DeepEqual(c.CrossedA, []bool{true, true, true}) {
		t.Errorf("CrossedA = %v", c.CrossedA)
	}
	if !reflect.DeepEqual(c.CrossedB, []bool{true, true, true}) {
		t.Errorf("CrossedB = %v", c.CrossedB)
	}
}

func TestCancel_Balanced(t *testing.T) {
	pairs := [][2]string{
		{"steve", "eve"},
		{"romeo", "juliet"},
		{"aaaa", "aa"},
		{"", "abc"},
		{"mississippi", "missouri"},
		{"zzz", "zzz"},
	}

	for _, p := range pairs {
		c := Cancel(Normalize(p[0]), Normalize(p[1]))

		crossedA := len(c.CrossedA) - uncrossed(c.CrossedA)
		crossedB := len(c.CrossedB) - uncrossed(c.CrossedB)
		if crossedA != crossedB {
			t.Errorf("%q/%q: crossed %d vs %d", p[0], p[1], crossedA, crossedB)
		}
	}
}

func TestRun_Zero(t *testing.T) {
	o := Run(0)

	if o.Survived() {
		t.Fatalf("Final = %q, want none", o.Final)
	}
	if len(o.Removed) != 0 {
		t.Errorf("Removed = %v, want empty", o.Removed)
	}
	if !reflect.DeepEqual(o.Log, []string{IdenticalNames}) {
		t.Errorf("Log = %v", o.Log)
	}
}

func TestRun_Sequences(t *testing.T) {
	tests := []struct {
		count   int
		removed string
		final   Label
	}{
		{1, "FLAME", Siblings},
		{2, "LMSAF", Enemies},
		{3, "ASMLE", Friends},
		{4, "MLFAS", Enemies},
		{6, "SFALE", Marriage},
		{7, "FASLM", Enemies},
	}

	for _, tt := range tests {
		o := Run(tt.count)

		if got := join(o.Removed); got != tt.removed {
			t.Errorf("Run(%d) removed %s, want %s", tt.count, got, tt.removed)
		}
		if o.Final != tt.final {
			t.Errorf("Run(%d) final %s, want %s", tt.count, o.Final, tt.final)
		}
		if len(o.Log) != 5 {
			t.Errorf("Run(%d) log has %d lines, want 5", tt.count, len(o.Log))
		}
	}
}

func TestRun_LogFormat(t *testing.T) {
	o := Run(3)

	want := "Count 3 → remove 'A' (remaining: FLMES)"
	if o.Log[0] != want {
		t.Errorf("Log[0] = %q, want %q", o.Log[0], want)
	}
	if !strings.HasSuffix(o.Log[4], "(remaining: F)") {
		t.Errorf("Log[4] = %q", o.Log[4])
	}
}

func TestRun_ShrinkingModulus(t *testing.T) {
	// A fixed modulus of 6 would remove index (2+2)%6=4 (E) second.
	o := Run(3)
	if o.Removed[1] != Siblings {
		t.Errorf("second removal = %s, want S", o.Removed[1])
	}
}

func TestRun_DoesNotMutateLabelSet(t *testing.T) {
	_ = Run(4)

	if got := join(Labels()); got != "FLAMES" {
		t.Fatalf("Labels() = %s after Run", got)
	}
}

func TestPlay_SteveEve(t *testing.T) {
	r := Play("Steve", "Eve")

	if r.Letters1.String() != "steve" || r.Letters2.String() != "eve" {
		t.Fatalf("letters = %s/%s", r.Letters1, r.Letters2)
	}
	if !reflect.DeepEqual(r.Cancellation.CrossedA, []bool{false, false, true, true, true}) {
		t.Errorf("CrossedA = %v", r.Cancellation.CrossedA)
	}
	if !reflect.DeepEqual(r.Cancellation.CrossedB, []bool{true, true, true}) {
		t.Errorf("CrossedB = %v", r.Cancellation.CrossedB)
	}
	if r.Count != 2 {
		t.Errorf("Count = %d, want 2", r.Count)
	}
	if r.Final != Enemies || r.Meaning != "Enemies" {
		t.Errorf("Final = %s (%s), want E (Enemies)", r.Final, r.Meaning)
	}
}

func TestPlay_IdenticalNames(t *testing.T) {
	r := Play("Ann Lee", "lee, ann")

	if r.Survived() {
		t.Fatalf("Final = %s, want none", r.Final)
	}
	if r.Meaning != NoMeaning {
		t.Errorf("Meaning = %q", r.Meaning)
	}
	if r.ResultText() != "—" {
		t.Errorf("ResultText() = %q", r.ResultText())
	}
}

func TestPlay_Idempotent(t *testing.T) {
	first := Play("Jane Doe", "John Smith")
	second := Play("Jane Doe", "John Smith")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Play is not deterministic:\n%#v\n%#v", first, second)
	}
}

func TestResult_ShareText(t *testing.T) {
	r := Play("Steve", "Eve")

	if got, want := r.ShareText(), "Steve & Eve — E — Enemies"; got != want {
		t.Errorf("ShareText() = %q, want %q", got, want)
	}
}

func TestResult_JSON(t *testing.T) {
	b, err := json.Marshal(Play("Steve", "Eve"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got["final"] != "E" {
		t.Errorf("final = %v", got["final"])
	}
	letters, ok := got["letters2"].([]any)
	if !ok || len(letters) != 3 || letters[0] != "e" {
		t.Errorf("letters2 = %v", got["letters2"])
	}
}

func TestLabel_Meaning(t *testing.T) {
	want := map[Label]string{
		"F": "Friends", "L": "Lovers", "A": "Affection",
		"M": "Marriage", "E": "Enemies", "S": "Siblings",
	}

	for l, m := range want {
		if l.Meaning() != m || !l.Valid() {
			t.Errorf("%s: Meaning() = %q, Valid() = %v", l, l.Meaning(), l.Valid())
		}
	}

	if Label("X").Valid() || NoLabel.Valid() {
		t.Error("unexpected valid label")
	}
}

func TestOutcome_Trace(t *testing.T) {
	steps := Run(3).Trace()

	want := []string{"FLMES", "FLME", "FLE", "FE", "F"}
	if len(steps) != len(want) {
		t.Fatalf("len(Trace()) = %d, want %d", len(steps), len(want))
	}
	for i, s := range steps {
		if got := join(s.Remaining); got != want[i] {
			t.Errorf("step %d remaining %s, want %s", i, got, want[i])
		}
	}

	if len(Run(0).Trace()) != 0 {
		t.Error("Trace() of a zero run is not empty")
	}
}
