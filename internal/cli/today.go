package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/display"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/prayer"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/region"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/schedule"
)

// todayReport is the structured output of the root command.
type todayReport struct {
	Province string          `json:"province" yaml:"province"`
	Regency  string          `json:"regency" yaml:"regency"`
	Date     string          `json:"date" yaml:"date"`
	Label    string          `json:"tanggal,omitempty" yaml:"tanggal,omitempty"`
	Previous *prayer.Ranked  `json:"previous" yaml:"previous"`
	Next     *prayer.Ranked  `json:"next" yaml:"next"`
	Events   []prayer.Ranked `json:"events,omitempty" yaml:"events,omitempty"`
}

func runToday(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	date, err := parseDate(FlagDate)
	if err != nil {
		return err
	}
	ref := now()

	ctx := cmd.Context()
	p := newPipeline(cfg)

	reg, err := p.lookup(ctx, cfg)
	if err != nil {
		return err
	}

	day, err := p.schedules.DayOf(ctx, reg, date)
	if err != nil {
		return err
	}

	ranking, err := prayer.Rank(day.Events, date, ref)
	if err != nil {
		return err
	}

	report := todayReport{
		Province: reg.Province,
		Regency:  reg.Regency,
		Date:     date.Format(schedule.DateLayout),
		Label:    day.Label,
		Previous: ranking.NearestPast(),
		Next:     ranking.NearestFuture(),
	}
	if FlagAll {
		report.Events = ranking.All()
	}

	if structured() {
		return writeStructured(cmd.OutOrStdout(), report)
	}

	printTodayRich(cmd.OutOrStdout(), reg, day, ranking, clockLayout(cfg.TimeFormat))
	return nil
}

// printTodayRich renders the colored terminal output for one day.
func printTodayRich(w io.Writer, reg region.Region, day schedule.Day, ranking prayer.Ranking, layout string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Jadwal Shalat"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s, %s\n", display.Title(reg.Regency), display.Title(reg.Province))
	if day.Label != "" {
		fmt.Fprintf(w, "  %s\n", day.Label)
	}
	fmt.Fprintln(w)

	var events []prayer.Ranked
	if FlagAll {
		events = ranking.All()
	} else {
		if p := ranking.NearestPast(); p != nil {
			events = append(events, *p)
		}
		if n := ranking.NearestFuture(); n != nil {
			events = append(events, *n)
		}
	}

	if len(events) == 0 {
		fmt.Fprintf(w, "  %s\n\n", display.Gray("no events listed for this day"))
		return
	}

	width := 0
	for _, e := range events {
		width = max(width, len(prayer.DisplayName(e.Name)))
	}

	next := ranking.NearestFuture()
	for _, e := range events {
		line := fmt.Sprintf("  %-*s  %s", width, prayer.DisplayName(e.Name), prayer.FormatClock(e.Time, layout))
		switch {
		case next != nil && e == *next:
			fmt.Fprintln(w, display.Accent(line+"  <- next in "+prayer.FormatRemaining(e.Remaining())))
		case e.Offset < 0:
			fmt.Fprintln(w, display.Dim(line+"  "+prayer.FormatRemaining(e.Remaining())+" ago"))
		default:
			fmt.Fprintln(w, line+"  in "+prayer.FormatRemaining(e.Remaining()))
		}
	}

	if next == nil {
		fmt.Fprintf(w, "\n  %s\n", display.Gray("every prayer of this day has passed"))
	}
	fmt.Fprintln(w)
}
