package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/api"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/cache"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/config"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/region"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/schedule"
)

var (
	// ErrInvalidDateFormat is returned when --date is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrNoRegion is returned when neither flags, environment nor config
	// name a province and regency.
	ErrNoRegion = errors.New("no region selected")
)

// Swapped out by tests.
var (
	now       = time.Now
	newClient = api.NewClient
)

// source is what the bimasislam client provides to both resolvers.
type source interface {
	region.Source
	schedule.Source
}

// pipeline wires the cache and the remote client into the two resolvers.
type pipeline struct {
	regions   *region.Resolver
	schedules *schedule.Resolver
}

func newPipeline(cfg *config.Config) *pipeline {
	var c cache.Cache
	fc, err := cache.New(cfg.CacheDir)
	if err != nil {
		// Without a cache every run goes to the network, which still works.
		logger.Warn("cache disabled", "error", err)
		c = cache.NewMemory()
	} else {
		logger.Debug("using cache", "dir", fc.Dir())
		c = fc
	}

	var src source = newClient()
	return &pipeline{
		regions:   region.NewResolver(c, src, logger),
		schedules: schedule.NewResolver(c, src, logger),
	}
}

// lookup resolves the catalog and finds the configured region.
func (p *pipeline) lookup(ctx context.Context, cfg *config.Config) (region.Region, error) {
	if cfg.Province == "" || cfg.Regency == "" {
		return region.Region{}, fmt.Errorf("%w: use --province and --regency, set %s_PROVINCE and %s_REGENCY, or run 'jadwal-shalat config set'",
			ErrNoRegion, config.EnvPrefix, config.EnvPrefix)
	}

	catalog, err := p.regions.Resolve(ctx)
	if err != nil {
		return region.Region{}, err
	}
	return catalog.Lookup(cfg.Province, cfg.Regency)
}

// parseDate turns the --date flag into a calendar date in the local zone.
// An empty value means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		t := now()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	}
	d, err := time.ParseInLocation(schedule.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDateFormat, s)
	}
	return d, nil
}
