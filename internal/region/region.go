// Package region resolves the catalog of Indonesian provinces and regencies
// that prayer schedules are published for.
package region

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/cache"
)

var (
	// ErrInvalidRegion is matched by lookups that find no catalog entry.
	ErrInvalidRegion = errors.New("region not found")

	// ErrMalformedCatalog is returned when a cached catalog cannot be
	// decoded as a list of regions.
	ErrMalformedCatalog = errors.New("malformed region catalog")
)

// Region identifies one regency (kabupaten/kota) within a province.
// Tokens are opaque identifiers only the remote source understands.
type Region struct {
	Province      string `json:"provinsi" yaml:"provinsi" validate:"required"`
	ProvinceToken string `json:"provinsi_token" yaml:"provinsi_token"`
	Regency       string `json:"kabupaten" yaml:"kabupaten" validate:"required"`
	RegencyToken  string `json:"kabupaten_token" yaml:"kabupaten_token"`
}

// Catalog lists regions in the order the source enumerated them:
// provinces first, then regencies within each province.
type Catalog []Region

// Source fetches the full catalog from the remote service.
type Source interface {
	FetchAll(ctx context.Context) (Catalog, error)
}

// InvalidRegionError reports a province/regency pair missing from the catalog.
type InvalidRegionError struct {
	Province string
	Regency  string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("region %q %q does not exist in the catalog", e.Province, e.Regency)
}

// Is lets errors.Is match ErrInvalidRegion.
func (e *InvalidRegionError) Is(target error) bool {
	return target == ErrInvalidRegion
}

// Lookup finds the region whose province and regency equal the upper-cased
// inputs. Matching is exact: no trimming, no partial matches.
func (c Catalog) Lookup(province, regency string) (Region, error) {
	p := strings.ToUpper(province)
	r := strings.ToUpper(regency)
	for _, reg := range c {
		if reg.Province == p && reg.Regency == r {
			return reg, nil
		}
	}
	return Region{}, &InvalidRegionError{Province: p, Regency: r}
}

// Provinces returns the distinct province names in enumeration order.
func (c Catalog) Provinces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, reg := range c {
		if !seen[reg.Province] {
			seen[reg.Province] = true
			out = append(out, reg.Province)
		}
	}
	return out
}

// Filter returns the regions of one province. An empty province returns
// the whole catalog. The province name is upper-cased before comparing.
func (c Catalog) Filter(province string) Catalog {
	if province == "" {
		return c
	}
	p := strings.ToUpper(province)
	var out Catalog
	for _, reg := range c {
		if reg.Province == p {
			out = append(out, reg)
		}
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every entry names both its province and regency.
// Resolve only reports a failure as a warning: the catalog is kept exactly
// as the source published it.
func (c Catalog) Validate() error {
	for i := range c {
		if err := validate.Struct(c[i]); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// Resolver loads the catalog from the cache, falling back to the source.
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

// Resolve returns the region catalog.
//
// A cached catalog is trusted as-is; if it cannot be decoded the error is
// returned rather than refetching. On a miss the catalog is fetched from
// the source and written back to the cache unconditionally. A failed write
// is logged and does not affect the result.
func (r *Resolver) Resolve(ctx context.Context) (Catalog, error) {
	data, err := r.Cache.Get(cache.RegionCatalogKey)
	switch {
	case err == nil:
		catalog, err := decodeCatalog(data)
		if err != nil {
			return nil, err
		}
		r.warnIncomplete(catalog, "cached")
		return catalog, nil
	case !errors.Is(err, cache.ErrNotFound):
		return nil, fmt.Errorf("failed to read region catalog: %w", err)
	}

	r.logger().Info("region catalog not cached, downloading")
	catalog, err := r.Source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch region catalog: %w", err)
	}
	r.warnIncomplete(catalog, "fetched")

	if err := cache.PutJSON(r.Cache, cache.RegionCatalogKey, catalog); err != nil {
		r.logger().Warn("failed to cache region catalog", "error", err)
	}

	return catalog, nil
}

func decodeCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCatalog, err)
	}
	return catalog, nil
}

// warnIncomplete logs entries missing a province or regency name. Such
// entries can never match a lookup but are otherwise harmless.
func (r *Resolver) warnIncomplete(catalog Catalog, origin string) {
	if err := catalog.Validate(); err != nil {
		r.logger().Warn("region catalog has incomplete entries", "origin", origin, "error", err)
	}
}
