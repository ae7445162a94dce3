package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/display"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/region"
)

var flagProvincesOnly bool

func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions [province]",
		Short: "List the regions bimasislam publishes schedules for",
		Long: "List every regency with its province, optionally limited to one province.\n" +
			"Use the names exactly as shown with --province and --regency (case does not matter).",
		Example: "  jadwal-shalat regions\n" +
			"  jadwal-shalat regions \"jawa barat\"\n" +
			"  jadwal-shalat regions --provinces",
		Args: cobra.MaximumNArgs(1),
		RunE: runRegions,
	}

	cmd.Flags().BoolVar(&flagProvincesOnly, "provinces", false, "List province names only")

	return cmd
}

func runRegions(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	catalog, err := newPipeline(cfg).regions.Resolve(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		province := strings.ToUpper(args[0])
		catalog = catalog.Filter(province)
		if len(catalog) == 0 {
			return fmt.Errorf("%w: no province named %q", region.ErrInvalidRegion, province)
		}
	}

	w := cmd.OutOrStdout()

	if flagProvincesOnly {
		provinces := catalog.Provinces()
		if structured() {
			return writeStructured(w, provinces)
		}
		tbl := display.NewTable("Provinsi")
		for _, p := range provinces {
			tbl.AddRow(p)
		}
		fmt.Fprint(w, tbl.Render())
		return nil
	}

	if structured() {
		return writeStructured(w, catalog)
	}

	tbl := display.NewTable("Kabupaten", "Provinsi")
	for _, r := range catalog {
		tbl.AddRow(r.Regency, r.Province)
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintf(w, "\n  %s\n", display.Gray(fmt.Sprintf("%d regions", tbl.Len())))
	return nil
}
