package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"retailcli/internal/dataprocessing"
	"retailcli/pkg/contracts/domain"
)

// WriteText prints a human readable summary of result to w.
func WriteText(w io.Writer, result *dataprocessing.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	p := result.Profile
	r := result.CleanReport

	fmt.Fprintf(tw, "Online Retail Summary\n")
	fmt.Fprintf(tw, "Source:\t%s\n", result.Source)
	if result.RunID != "" {
		fmt.Fprintf(tw, "Run:\t%s\n", result.RunID)
	}
	fmt.Fprintf(tw, "Raw rows:\t%d\n", result.RawRows)
	fmt.Fprintf(tw, "Clean rows:\t%d\n", r.OutputRows)
	fmt.Fprintf(tw, "  dropped, missing customer:\t%d\n", r.MissingCustomer)
	fmt.Fprintf(tw, "  dropped, non-positive quantity or price:\t%d\n", r.NonPositiveAmounts)
	fmt.Fprintf(tw, "  dropped, unparsable date:\t%d\n", r.UnparsableDates)

	if r.OutputRows > 0 {
		fmt.Fprintf(tw, "Period:\t%s to %s\n", p.FirstPeriod, p.LastPeriod)
		fmt.Fprintf(tw, "Countries:\t%d\n", len(p.Countries))
		fmt.Fprintf(tw, "Total quantity:\t%d\n", p.TotalQuantity)
		fmt.Fprintf(tw, "Mean unit price:\t%s\n", formatFloat(result.Statistics.UnitPrice.Mean))
	}

	writeTableText(tw, "Monthly totals", result.Monthly, false)
	writeTableText(tw, "Top products", result.TopProducts, true)
	writeTableText(tw, "Country totals", result.Countries, true)

	return tw.Flush()
}

func writeTableText(w io.Writer, title string, table domain.SummaryTable, ranked bool) {
	if table.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for i, row := range table.Rows {
		if ranked {
			fmt.Fprintf(w, "%d.\t%s\t%d\n", i+1, row.Key, row.Total)
		} else {
			fmt.Fprintf(w, "\t%s\t%d\n", row.Key, row.Total)
		}
	}
}
