package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode"
)

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// Modes lists the named display modes, for help text and validation.
var Modes = []string{
	FormatTimeRemaining,
	FormatNextPrayerTime,
	FormatNameAndTime,
	FormatNameAndRemaining,
	FormatShortNameAndTime,
	FormatShortNameAndRemain,
	FormatFull,
}

// ShortNames maps the event names bimasislam publishes to abbreviations.
// Names not listed here fall back to their first letter.
var ShortNames = map[string]string{
	"imsak":   "Im",
	"subuh":   "S",
	"terbit":  "T",
	"dhuha":   "Dh",
	"dzuhur":  "Dz",
	"ashar":   "A",
	"maghrib": "M",
	"isya":    "I",
}

// ShortName returns the abbreviation of an event name.
func ShortName(name string) string {
	if s, ok := ShortNames[strings.ToLower(name)]; ok {
		return s
	}
	for _, r := range name {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// DisplayName capitalises an event name for output, e.g. "subuh" -> "Subuh".
func DisplayName(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// FormatClock renders an HH:MM string in the given Go layout, e.g. "3:04 PM".
// Unparseable input is returned unchanged.
func FormatClock(hhmm, layout string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format(layout)
}

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Display name, e.g. "Ashar"
	ShortName string // Abbreviated name, e.g. "A"
	Time      string // Formatted event time, e.g. "15:02" or "3:02 PM"
	Remaining string // Time remaining, e.g. "2h 15m"
	Hours     int    // Whole hours remaining
	Minutes   int    // Remaining minutes after hours
}

// FormatOutput formats a ranked event for display according to the chosen mode.
// timeFormat should be "15:04" for 24h or "3:04 PM" for 12h.
//
// If mode contains "{{", it is treated as a custom Go template string.
// Available template fields: .Name, .ShortName, .Time, .Remaining, .Hours, .Minutes
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Ashar in 2h 15m"
func FormatOutput(r Ranked, mode string, timeFormat string) string {
	d := r.Remaining()
	remaining := FormatRemaining(d)
	timeStr := FormatClock(r.Time, timeFormat)
	name := DisplayName(r.Name)
	short := ShortName(r.Name)

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      name,
			ShortName: short,
			Time:      timeStr,
			Remaining: remaining,
			Hours:     int(d.Hours()),
			Minutes:   int(d.Minutes()) % 60,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return remaining
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndTime:
		return fmt.Sprintf("%s %s", name, timeStr)
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", name, remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, remaining)
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", name, timeStr, remaining)
	default:
		return fmt.Sprintf("%s %s", name, timeStr)
	}
}

// formatCustom executes a user-provided Go template string against the FormatData.
func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
