/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Label is one of the six FLAMES outcomes.
type Label string

const (
	Friends   Label = "F"
	Lovers    Label = "L"
	Affection Label = "A"
	Marriage  Label = "M"
	Enemies   Label = "E"
	Siblings  Label = "S"

	// NoLabel is the result when every letter cancels out.
	NoLabel Label = ""
)

// IdenticalNames is the single log line emitted when nothing is left to count.
const IdenticalNames = "No letters left: identical names"

var labels = [...]Label{Friends, Lovers, Affection, Marriage, Enemies, Siblings}

var meanings = map[Label]string{
	Friends:   "Friends",
	Lovers:    "Lovers",
	Affection: "Affection",
	Marriage:  "Marriage",
	Enemies:   "Enemies",
	Siblings:  "Siblings",
}

// Labels returns the label set in counting order.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels[:])

	return out
}

// Meaning returns the long form of l, or the empty string if l is not a label.
func (l Label) Meaning() string {
	return meanings[l]
}

// Valid reports whether l is one of the six labels.
func (l Label) Valid() bool {
	_, ok := meanings[l]

	return ok
}

// Letters is the canonical form of a name: lower-case a-z only, in order.
type Letters []byte

func (l Letters) String() string {
	return string(l)
}

// MarshalJSON encodes the letters as an array of one-character strings so
// that the front end can render one tile per letter.
func (l Letters) MarshalJSON() ([]byte, error) {
	out := make([]string, len(l))
	for i, c := range l {
		out[i] = string(c)
	}

	return json.Marshal(out)
}

// Normalize lower-cases name and drops everything outside a-z.
func Normalize(name string) Letters {
	out := make(Letters, 0, len(name))

	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			out = append(out, byte(r))
		}
	}

	return out
}

// Cancellation marks which letters of each name were paired off.
type Cancellation struct {
	CrossedA []bool `json:"crossed_a"`
	CrossedB []bool `json:"crossed_b"`
}

// Cancel pairs every letter of a with the earliest uncrossed matching letter
// of b. First match wins; this is a greedy pass, not a maximum matching.
func Cancel(a, b Letters) Cancellation {
	c := Cancellation{
		CrossedA: make([]bool, len(a)),
		CrossedB: make([]bool, len(b)),
	}

	for i := range a {
		for j := range b {
			if !c.CrossedB[j] && a[i] == b[j] {
				c.CrossedA[i] = true
				c.CrossedB[j] = true

				break
			}
		}
	}

	return c
}

// Remaining returns the number of uncrossed letters on each side.
func (c Cancellation) Remaining() (a, b int) {
	return uncrossed(c.CrossedA), uncrossed(c.CrossedB)
}

// Count is the step size handed to Run.
func (c Cancellation) Count() int {
	a, b := c.Remaining()

	return a + b
}

func uncrossed(crossed []bool) int {
	n := 0
	for _, x := range crossed {
		if !x {
			n++
		}
	}

	return n
}

// Outcome is the trace of one counting-out run.
type Outcome struct {
	Final   Label    `json:"final,omitempty"`
	Log     []string `json:"log"`
	Removed []Label  `json:"removed"`
}

// Survived reports whether the run produced a label.
func (o Outcome) Survived() bool {
	return o.Final != NoLabel
}

// Run counts out the six labels with the given step, recomputing the
// position against the shrinking list each round, until one remains.
//
// count must not be negative. A count of zero yields no survivor.
func Run(count int) Outcome {
	if count == 0 {
		return Outcome{
			Log:     []string{IdenticalNames},
			Removed: []Label{},
		}
	}

	state := Labels()
	out := Outcome{
		Log:     make([]string, 0, len(state)-1),
		Removed: make([]Label, 0, len(state)-1),
	}

	idx := 0
	for len(state) > 1 {
		idx = (idx + (count - 1)) % len(state)

		removed := state[idx]
		state = append(state[:idx], state[idx+1:]...)

		out.Removed = append(out.Removed, removed)
		out.Log = append(out.Log, fmt.Sprintf("Count %d → remove '%s' (remaining: %s)", count, removed, join(state)))
	}

	out.Final = state[0]

	return out
}

// Step is one removal together with the labels still standing after it.
type Step struct {
	Removed   Label   `json:"removed"`
	Remaining []Label `json:"remaining"`
}

// Trace replays Removed against the full label set and returns the snapshot
// after each removal.
func (o Outcome) Trace() []Step {
	state := Labels()
	steps := make([]Step, 0, len(o.Removed))

	for _, r := range o.Removed {
		for i, l := range state {
			if l == r {
				state = append(state[:i], state[i+1:]...)

				break
			}
		}

		snapshot := make([]Label, len(state))
		copy(snapshot, state)
		steps = append(steps, Step{Removed: r, Remaining: snapshot})
	}

	return steps
}

func join(ls []Label) string {
	var b strings.Builder

	for _, l := range ls {
		b.WriteString(string(l))
	}

	return b.String()
}

// Result is everything one play produces, from raw names to the survivor.
type Result struct {
	Name1        string       `json:"name1"`
	Name2        string       `json:"name2"`
	Letters1     Letters      `json:"letters1"`
	Letters2     Letters      `json:"letters2"`
	Cancellation Cancellation `json:"cancellation"`
	Count        int          `json:"count"`
	Outcome
	Meaning string `json:"meaning"`
}

// NoMeaning is shown in place of a meaning when every letter cancelled.
const NoMeaning = "No letters remain — identical names."

// Play runs Normalize, Cancel and Run in order for two raw names.
// Callers are expected to reject empty names before calling.
func Play(name1, name2 string) Result {
	a := Normalize(name1)
	b := Normalize(name2)
	c := Cancel(a, b)
	count := c.Count()
	o := Run(count)

	meaning := NoMeaning
	if o.Survived() {
		meaning = o.Final.Meaning()
	}

	return Result{
		Name1:        name1,
		Name2:        name2,
		Letters1:     a,
		Letters2:     b,
		Cancellation: c,
		Count:        count,
		Outcome:      o,
		Meaning:      meaning,
	}
}

// ResultText is the display form of the outcome label, "—" when none.
func (r Result) ResultText() string {
	if !r.Survived() {
		return "—"
	}

	return string(r.Final)
}

// ShareText is the one-line summary used for sharing and history copies.
func (r Result) ShareText() string {
	return fmt.Sprintf("%s & %s — %s — %s", r.Name1, r.Name2, r.ResultText(), r.Meaning)
}
