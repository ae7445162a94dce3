package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/display"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/prayer"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/schedule"
)

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show the whole month's schedule",
		Long: "Display every day of the month containing --date (default: this month)\n" +
			"as a table, with the selected day highlighted.",
		Args: cobra.NoArgs,
		RunE: runMonth,
	}
}

// monthDay is one row of the structured month output.
type monthDay struct {
	Date   string           `json:"date" yaml:"date"`
	Label  string           `json:"tanggal" yaml:"tanggal"`
	Events []schedule.Event `json:"events" yaml:"events"`
}

// monthReport is the structured output of the month command.
type monthReport struct {
	Province string     `json:"province" yaml:"province"`
	Regency  string     `json:"regency" yaml:"regency"`
	Year     int        `json:"year" yaml:"year"`
	Month    int        `json:"month" yaml:"month"`
	Days     []monthDay `json:"days" yaml:"days"`
}

func runMonth(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	date, err := parseDate(FlagDate)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p := newPipeline(cfg)

	reg, err := p.lookup(ctx, cfg)
	if err != nil {
		return err
	}

	m, err := p.schedules.ResolveMonth(ctx, reg, date.Year(), int(date.Month()))
	if err != nil {
		return err
	}

	report := monthReport{
		Province: reg.Province,
		Regency:  reg.Regency,
		Year:     date.Year(),
		Month:    int(date.Month()),
	}
	for _, key := range m.Dates() {
		d, err := time.ParseInLocation(schedule.DateLayout, key, date.Location())
		if err != nil {
			return fmt.Errorf("%w: unexpected date key %q", schedule.ErrMalformedSchedule, key)
		}
		day, err := m.Day(d)
		if errors.Is(err, schedule.ErrNoScheduleForDate) {
			continue
		}
		if err != nil {
			return err
		}
		report.Days = append(report.Days, monthDay{Date: key, Label: day.Label, Events: day.Events})
	}

	if structured() {
		return writeStructured(cmd.OutOrStdout(), report)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(fmt.Sprintf("Jadwal Shalat %s", date.Format("January 2006"))))
	fmt.Fprintf(w, "  %s, %s\n", display.Title(reg.Regency), display.Title(reg.Province))
	fmt.Fprintln(w)

	if len(report.Days) == 0 {
		fmt.Fprintf(w, "  %s\n\n", display.Gray("no schedule published for this month"))
		return nil
	}

	fmt.Fprint(w, monthTable(report.Days, date.Format(schedule.DateLayout), clockLayout(cfg.TimeFormat)).Render())
	fmt.Fprintln(w)
	return nil
}

// monthTable lays the days out with one column per event, in the order the
// first day lists them.
func monthTable(days []monthDay, highlight, layout string) *display.Table {
	var names []string
	for _, e := range days[0].Events {
		names = append(names, e.Name)
	}

	headers := []string{"Tanggal"}
	for _, n := range names {
		headers = append(headers, prayer.DisplayName(n))
	}
	tbl := display.NewTable(headers...)

	for i, d := range days {
		times := make(map[string]string, len(d.Events))
		for _, e := range d.Events {
			times[e.Name] = e.Time
		}

		row := []string{d.Date}
		for _, n := range names {
			row = append(row, prayer.FormatClock(times[n], layout))
		}
		tbl.AddRow(row...)

		if d.Date == highlight {
			tbl.SetHighlightRow(i)
		}
	}
	return tbl
}
