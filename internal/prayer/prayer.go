package prayer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/schedule"
)

// eventLayout combines a day and an event's HH:MM into one timestamp.
const eventLayout = "2006-01-02 15:04"

// ErrInvalidTime is returned when an event's time is not HH:MM.
var ErrInvalidTime = errors.New("invalid event time")

// Ranked is an event annotated with its distance from the reference time.
// Offset is negative for events that have already passed.
type Ranked struct {
	Offset int    `json:"offset_minutes" yaml:"offset_minutes"`
	Name   string `json:"name" yaml:"name"`
	Time   string `json:"time" yaml:"time"`
}

// Remaining returns the offset as a duration.
func (r Ranked) Remaining() time.Duration {
	return time.Duration(r.Offset) * time.Minute
}

// Ranking splits a day's events around a reference time.
//
// Past is sorted by ascending offset, so the most recently passed event is
// last. Future is sorted by ascending offset, so the soonest event is first.
// Events with equal offsets keep their input order.
type Ranking struct {
	Past   []Ranked `json:"past" yaml:"past"`
	Future []Ranked `json:"future" yaml:"future"`
}

// NearestPast returns the most recently passed event, or nil.
func (r Ranking) NearestPast() *Ranked {
	if len(r.Past) == 0 {
		return nil
	}
	return &r.Past[len(r.Past)-1]
}

// NearestFuture returns the next upcoming event, or nil.
func (r Ranking) NearestFuture() *Ranked {
	if len(r.Future) == 0 {
		return nil
	}
	return &r.Future[0]
}

// All returns past and future events in one slice, in ranking order.
func (r Ranking) All() []Ranked {
	out := make([]Ranked, 0, len(r.Past)+len(r.Future))
	out = append(out, r.Past...)
	return append(out, r.Future...)
}

// Rank computes each event's offset from ref and partitions the events.
//
// Only clock times are compared: the calendar date of day and ref does not
// take part in the subtraction. A schedule for tomorrow ranked against
// today's clock therefore looks exactly like today's. An offset of zero
// counts as upcoming.
func Rank(events []schedule.Event, day, ref time.Time) (Ranking, error) {
	prefix := day.Format(schedule.DateLayout)
	refClock := clockOf(ref)

	var r Ranking
	for _, e := range events {
		ts, err := time.Parse(eventLayout, prefix+" "+e.Time)
		if err != nil {
			return Ranking{}, fmt.Errorf("%w for %s (%q): %w", ErrInvalidTime, e.Name, e.Time, err)
		}

		offset := int(math.Floor((clockOf(ts) - refClock).Minutes()))
		item := Ranked{Offset: offset, Name: e.Name, Time: e.Time}
		if offset >= 0 {
			r.Future = append(r.Future, item)
		} else {
			r.Past = append(r.Past, item)
		}
	}

	byOffset := func(s []Ranked) func(i, j int) bool {
		return func(i, j int) bool { return s[i].Offset < s[j].Offset }
	}
	sort.SliceStable(r.Past, byOffset(r.Past))
	sort.SliceStable(r.Future, byOffset(r.Future))

	return r, nil
}

// minutesPerDay is added to an offset to carry it across midnight.
const minutesPerDay = 24 * 60

// FirstOfNextDay returns the earliest event of the following day's events,
// with its offset measured from ref across midnight. It returns nil when
// events is empty.
func FirstOfNextDay(events []schedule.Event, nextDay, ref time.Time) (*Ranked, error) {
	r, err := Rank(events, nextDay, ref)
	if err != nil {
		return nil, err
	}
	all := r.All()
	if len(all) == 0 {
		return nil, nil
	}
	first := all[0]
	first.Offset += minutesPerDay
	return &first, nil
}

// clockOf returns the time elapsed since midnight on t's wall clock.
func clockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
// Negative durations are formatted by magnitude.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
