package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/prayer"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/schedule"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long: "Display the next upcoming prayer and the time left until it.\n" +
			"The output is a single line, suitable for tmux or other status bars.\n" +
			"After isya the first prayer of the following day is shown.",
		Args: cobra.NoArgs,
		RunE: runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", "",
		"Display format: "+strings.Join(prayer.Modes, ", ")+", or a custom Go template (default: config format or full)")

	return cmd
}

// nextReport is the structured output of the next command.
type nextReport struct {
	Province  string `json:"province" yaml:"province"`
	Regency   string `json:"regency" yaml:"regency"`
	Name      string `json:"name" yaml:"name"`
	Time      string `json:"time" yaml:"time"`
	Remaining string `json:"remaining" yaml:"remaining"`
	Offset    int    `json:"offset_minutes" yaml:"offset_minutes"`
	Tomorrow  bool   `json:"tomorrow" yaml:"tomorrow"`
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	// Priority: --format flag > config > full.
	mode := prayer.FormatFull
	if cmd.Flags().Changed("format") {
		mode = flagFormat
	} else if cfg.Format != "" {
		mode = cfg.Format
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

	next := ranking.NearestFuture()
	tomorrow := false

	// Every prayer of the day has passed: look at the first one tomorrow.
	if next == nil {
		tomorrowDate := date.AddDate(0, 0, 1)
		tDay, err := p.schedules.DayOf(ctx, reg, tomorrowDate)
		if err != nil {
			return fmt.Errorf("failed to resolve schedule for %s: %w", tomorrowDate.Format(schedule.DateLayout), err)
		}

		next, err = prayer.FirstOfNextDay(tDay.Events, tomorrowDate, ref)
		if err != nil {
			return err
		}
		tomorrow = true
	}

	if next == nil {
		return fmt.Errorf("could not determine next prayer")
	}

	if structured() {
		return writeStructured(cmd.OutOrStdout(), nextReport{
			Province:  reg.Province,
			Regency:   reg.Regency,
			Name:      next.Name,
			Time:      next.Time,
			Remaining: prayer.FormatRemaining(next.Remaining()),
			Offset:    next.Offset,
			Tomorrow:  tomorrow,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), prayer.FormatOutput(*next, mode, clockLayout(cfg.TimeFormat)))
	return nil
}
