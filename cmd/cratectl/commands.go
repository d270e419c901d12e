package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cratehttpmapper "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/http/mapper"
	cratememory "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/memory"
	cratesapp "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application"
	cratestypes "github.com/Apurer/pet-crate-sizer/internal/domains/crates/application/types"
	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
	"github.com/Apurer/pet-crate-sizer/internal/shared/units"
)

type calculateFlags struct {
	measurements cratehttpmapper.Measurements
	unit         string
	formula      string
	strict       bool
	json         bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	service := cratesapp.NewService(cratememory.NewCatalogRepository(nil), cratememory.NewAssessmentRepository())
	root := &cobra.Command{
		Use:           "cratectl",
		Short:         "Size IATA-compliant pet travel crates from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newCalculateCmd(service), newCatalogCmd(service))
	return root
}

func newCalculateCmd(service *cratesapp.Service) *cobra.Command {
	var flags calculateFlags
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compute the minimum internal crate size and the smallest catalog crate that fits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			unit, err := units.Parse(flags.unit)
			if err != nil {
				return err
			}
			measurements := cratehttpmapper.ToDomainMeasurements(flags.measurements, unit)
			if flags.strict {
				if fields := cratehttpmapper.MeasurementFieldErrors(measurements); fields != nil {
					return fmt.Errorf("invalid measurements: %s", joinFields(fields))
				}
			}
			result, err := service.Calculate(cmd.Context(), cratestypes.CalculateInput{
				Measurements: measurements,
				Formula:      domain.Formula(flags.formula),
				Strict:       flags.strict,
			})
			if err != nil {
				return err
			}
			response := cratehttpmapper.FromCalculateResult(result, unit)
			if flags.json {
				return writeJSON(cmd.OutOrStdout(), response)
			}
			return writeRecommendation(cmd.OutOrStdout(), response)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&flags.measurements.LengthA, "length-a", 0, "nose to root of tail (A)")
	f.Float64Var(&flags.measurements.ElbowB, "elbow-b", 0, "ground to elbow joint (B)")
	f.Float64Var(&flags.measurements.WidthC, "width-c", 0, "width across the shoulders (C)")
	f.Float64Var(&flags.measurements.HeightD, "height-d", 0, "ground to top of head or ears standing (D)")
	f.BoolVar(&flags.measurements.IsSnubNosed, "snub-nosed", false, "apply the brachycephalic 10% buffer")
	f.StringVar(&flags.unit, "unit", "cm", "measurement unit (cm or in)")
	f.StringVar(&flags.formula, "formula", "", "height formula (head-clearance or elbow-stacked)")
	f.BoolVar(&flags.strict, "strict", false, "fail on missing or invalid measurements")
	f.BoolVar(&flags.json, "json", false, "print JSON")
	return cmd
}

func newCatalogCmd(service *cratesapp.Service) *cobra.Command {
	var unitFlag string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the crate catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			unit, err := units.Parse(unitFlag)
			if err != nil {
				return err
			}
			catalog, err := service.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			response := cratehttpmapper.FromCatalog(catalog, unit)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), response)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tNAME\tINTERNAL (%s)\n", response.Unit)
			for _, crate := range response.Crates {
				fmt.Fprintf(w, "%s\t%s\t%s\n", crate.ID, crate.Name, formatDimensions(crate.Internal))
			}
			fmt.Fprintf(w, "catalog %s\n", response.Version)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&unitFlag, "unit", "cm", "display unit (cm or in)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeRecommendation(out io.Writer, response cratehttpmapper.CalculateResponse) error {
	rec := response.Recommendation
	if rec == nil {
		_, err := fmt.Fprintln(out, "measurements incomplete: enter A, B, C and D to get a recommendation")
		return err
	}
	fmt.Fprintf(out, "minimum internal: %s %s\n", formatDimensions(rec.MinInternal), rec.Unit)
	if rec.IsCustomBuildNeeded {
		_, err := fmt.Fprintln(out, "no catalog crate fits: custom build needed")
		return err
	}
	_, err := fmt.Fprintf(out, "recommended crate: %s (%s) %s %s\n",
		rec.RecommendedCrate.Name, rec.RecommendedCrate.ID, formatDimensions(rec.RecommendedCrate.Internal), rec.Unit)
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDimensions(d cratehttpmapper.Dimensions) string {
	return fmt.Sprintf("%g x %g x %g", d.Length, d.Width, d.Height)
}

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	joined := ""
	for i, k := range keys {
		if i > 0 {
			joined += "; "
		}
		joined += k + ": " + fields[k]
	}
	return joined
}
