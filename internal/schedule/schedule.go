// Package schedule resolves monthly prayer schedules for a region and
// extracts the events of a single day.
package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/cache"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/region"
)

// DateLayout is the layout of the day keys inside a month document.
const DateLayout = "2006-01-02"

// labelField is the reserved key holding the source's own date text.
const labelField = "tanggal"

var (
	// ErrNoScheduleForDate means the month document has no entry for the day.
	ErrNoScheduleForDate = errors.New("no schedule for date")

	// ErrMalformedSchedule means a month or day document has the wrong shape.
	ErrMalformedSchedule = errors.New("malformed schedule")

	// ErrInvalidMonth is returned for months outside 1..12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// Event is one named time of day, e.g. {"subuh", "04:40"}.
type Event struct {
	Name string `json:"name" yaml:"name"`
	Time string `json:"time" yaml:"time"`
}

// Day is one calendar day's schedule. Events keep the order in which the
// source listed them.
type Day struct {
	Label  string  `json:"tanggal" yaml:"tanggal"`
	Events []Event `json:"events" yaml:"events"`
}

// Month maps YYYY-MM-DD to that day's raw record. Records are decoded on
// demand by Day so that a single bad entry does not poison the month.
type Month map[string]json.RawMessage

// Source fetches one month of schedule data for a region.
type Source interface {
	FetchMonth(ctx context.Context, reg region.Region, year, month int) (Month, error)
}

// ParseMonth decodes a month document. The top level must be an object;
// null and an empty array are accepted as an empty month, which is how
// the remote service reports a month it has no data for.
func ParseMonth(data []byte) (Month, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, fmt.Errorf("%w: empty document", ErrMalformedSchedule)
	case bytes.Equal(trimmed, []byte("null")):
		return Month{}, nil
	case trimmed[0] == '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil || len(arr) > 0 {
			return nil, fmt.Errorf("%w: month is a list, want an object", ErrMalformedSchedule)
		}
		return Month{}, nil
	}

	var m Month
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSchedule, err)
	}
	if m == nil {
		m = Month{}
	}
	return m, nil
}

// Dates returns the day keys of the month in ascending order.
func (m Month) Dates() []string {
	dates := make([]string, 0, len(m))
	for k := range m {
		dates = append(dates, k)
	}
	sort.Strings(dates)
	return dates
}

// Day extracts the schedule of one date.
//
// A missing or null entry yields ErrNoScheduleForDate; an entry that is not
// an object yields ErrMalformedSchedule. Event values that are not strings
// become an empty time rather than failing the day.
func (m Month) Day(date time.Time) (Day, error) {
	key := date.Format(DateLayout)
	raw, ok := m[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Day{}, fmt.Errorf("%w %s", ErrNoScheduleForDate, key)
	}

	day, err := decodeDay(raw)
	if err != nil {
		return Day{}, fmt.Errorf("%s: %w", key, err)
	}
	return day, nil
}

// decodeDay walks the object token by token so event order survives.
func decodeDay(raw json.RawMessage) (Day, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return Day{}, fmt.Errorf("%w: %w", ErrMalformedSchedule, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Day{}, fmt.Errorf("%w: day entry is not an object", ErrMalformedSchedule)
	}

	var day Day
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Day{}, fmt.Errorf("%w: %w", ErrMalformedSchedule, err)
		}
		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return Day{}, fmt.Errorf("%w: %w", ErrMalformedSchedule, err)
		}
		text := stringValue(value)

		if name == labelField {
			day.Label = text
			continue
		}
		if i, dup := index[name]; dup {
			day.Events[i].Time = text
			continue
		}
		index[name] = len(day.Events)
		day.Events = append(day.Events, Event{Name: name, Time: text})
	}

	return day, nil
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Resolver loads month documents from the cache, falling back to the source.
type Resolver struct {
	Cache  cache.Cache
	Source Source
	Logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger uses slog.Default().
func NewResolver(c cache.Cache, src Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Cache: c, Source: src, Logger: logger}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// ResolveMonth returns the schedule of reg for the given month.
//
// A cached document that fails to parse is an error; it is not refetched.
// On a miss the month is fetched and written back; a failed write is
// logged and the fetched month is still returned.
func (r *Resolver) ResolveMonth(ctx context.Context, reg region.Region, year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}

	key := cache.MonthKey(reg.Province, reg.Regency, year, month)
	data, err := r.Cache.Get(key)
	switch {
	case err == nil:
		m, err := ParseMonth(data)
		if err != nil {
			return nil, fmt.Errorf("cached schedule %q: %w", key, err)
		}
		r.logger().Debug("schedule loaded from cache", "key", key, "days", len(m))
		return m, nil
	case !errors.Is(err, cache.ErrNotFound):
		return nil, fmt.Errorf("failed to read cached schedule %q: %w", key, err)
	}

	r.logger().Info("schedule not cached, downloading",
		"province", reg.Province, "regency", reg.Regency, "year", year, "month", month)

	m, err := r.Source.FetchMonth(ctx, reg, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for %04d-%02d: %w", year, month, err)
	}

	if err := cache.PutJSON(r.Cache, key, m); err != nil {
		r.logger().Warn("failed to cache schedule", "key", key, "error", err)
	}

	return m, nil
}

// DayOf returns the schedule of reg on the given date.
func (r *Resolver) DayOf(ctx context.Context, reg region.Region, date time.Time) (Day, error) {
	m, err := r.ResolveMonth(ctx, reg, date.Year(), int(date.Month()))
	if err != nil {
		return Day{}, err
	}
	return m.Day(date)
}
