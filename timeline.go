/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"time"

	"github.com/Seednode/flames/games"
)

var (
	blipWaves = [...]string{"sine", "square", "sawtooth"}
	chime     = []int{480, 660, 880}
)

// Tone is a short oscillator burst played by the browser.
type Tone struct {
	Freq     int     `json:"freq"`
	Wave     string  `json:"wave"`
	Duration float64 `json:"duration"`
}

func blip(step int) Tone {
	return Tone{
		Freq:     520 + step*40,
		Wave:     blipWaves[step%len(blipWaves)],
		Duration: 0.12,
	}
}

type LettersMessage struct {
	Type     string        `json:"type"` // "letters"
	Name1    string        `json:"name1"`
	Name2    string        `json:"name2"`
	Letters1 games.Letters `json:"letters1"`
	Letters2 games.Letters `json:"letters2"`
	CrossedA []bool        `json:"crossed_a"`
	CrossedB []bool        `json:"crossed_b"`
}

type CountMessage struct {
	Type  string   `json:"type"` // "count"
	Count int      `json:"count"`
	Log   []string `json:"log"`
}

type RemoveMessage struct {
	Type      string        `json:"type"` // "remove"
	Step      int           `json:"step"`
	Label     games.Label   `json:"label"`
	Remaining []games.Label `json:"remaining"`
	Tone      Tone          `json:"tone"`
}

type ResultMessage struct {
	Type       string      `json:"type"` // "result"
	Final      games.Label `json:"final,omitempty"`
	ResultText string      `json:"result_text"`
	Meaning    string      `json:"meaning"`
	Share      string      `json:"share"`
	Chime      []int       `json:"chime"`
}

// task is one entry of a Timeline: wait Delay, then emit Msg.
type task struct {
	Delay time.Duration
	Msg   any
}

// Timeline is the ordered animation queue for one play.
type Timeline []task

// newTimeline lays out everything the browser animates for r. The letters
// and count are shown at once; each removal and the final result follow
// after step.
func newTimeline(r games.Result, step time.Duration) Timeline {
	trace := r.Trace()
	tl := make(Timeline, 0, len(trace)+3)

	tl = append(tl,
		task{Msg: LettersMessage{
			Type:     "letters",
			Name1:    r.Name1,
			Name2:    r.Name2,
			Letters1: r.Letters1,
			Letters2: r.Letters2,
			CrossedA: r.Cancellation.CrossedA,
			CrossedB: r.Cancellation.CrossedB,
		}},
		task{Msg: CountMessage{
			Type:  "count",
			Count: r.Count,
			Log:   r.Log,
		}},
	)

	for i, s := range trace {
		tl = append(tl, task{
			Delay: step,
			Msg: RemoveMessage{
				Type:      "remove",
				Step:      i,
				Label:     s.Removed,
				Remaining: s.Remaining,
				Tone:      blip(i),
			},
		})
	}

	tl = append(tl, task{
		Delay: step,
		Msg: ResultMessage{
			Type:       "result",
			Final:      r.Final,
			ResultText: r.ResultText(),
			Meaning:    r.Meaning,
			Share:      r.ShareText(),
			Chime:      chime,
		},
	})

	return tl
}

// runTimeline emits each task in order on the calling goroutine, sleeping
// for its delay first. It returns ctx.Err() if cancelled before the last
// task is emitted.
func runTimeline(ctx context.Context, tl Timeline, emit func(any)) error {
	for _, t := range tl {
		if t.Delay > 0 {
			timer := time.NewTimer(t.Delay)

			select {
			case <-ctx.Done():
				timer.Stop()

				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		emit(t.Msg)
	}

	return nil
}
