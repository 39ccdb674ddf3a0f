package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	petsdomain "github.com/Apurer/adoptionos/internal/domains/pets/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// output prints v as JSON when --json is set, otherwise through table.
func (rt *runtime) output(v any, table func(w io.Writer) error) error {
	if rt.jsonOut {
		return writeJSON(rt.opts.Out, v)
	}
	return table(rt.opts.Out)
}

func petTable(pets []petsdomain.Pet) func(io.Writer) error {
	return func(out io.Writer) error {
		if len(pets) == 0 {
			_, err := fmt.Fprintln(out, "No pets found.")
			return err
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tNAME\tSPECIES\tSTATUS\tSPOTLIGHT\n")
		for _, p := range pets {
			spotlight := ""
			if p.Settings.IsSpotlightFeatured {
				spotlight = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Species, p.Status(), spotlight)
		}
		return w.Flush()
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
