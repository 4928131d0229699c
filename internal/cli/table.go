package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/donorlog/internal/donation"
)

var tableHeader = []string{"Code", "Name", "National ID", "Birth Date", "Blood Type", "Volume (ml)"}

// ListResult is the JSON payload for commands that show the store.
type ListResult struct {
	Records []donation.Fields `json:"records"`
	Count   int               `json:"count"`
}

func newListResult(records []donation.Record) ListResult {
	fields := make([]donation.Fields, len(records))
	for i, r := range records {
		fields[i] = r.Fields()
	}
	return ListResult{Records: fields, Count: len(records)}
}

// writeTable renders records as aligned columns in stored order.
func writeTable(w io.Writer, records []donation.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow(tw, tableHeader)
	for _, r := range records {
		writeRow(tw, []string{
			fmt.Sprint(r.Code),
			r.Name,
			r.NationalID,
			r.BirthDateText(),
			r.BloodType,
			fmt.Sprint(r.Volume),
		})
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
