// Package report renders pipeline results for the console. It only consumes
// the pipeline's aggregates; no selection logic lives here.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
	"github.com/fantasy-tools/fpl-optimizer/internal/pipeline"
)

// Write prints the squad, the starting lineup, the captain and the cost/point
// totals to w.
func Write(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, "Optimized Squad")
	writeTable(w, res.Squad)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Starting Lineup")
	writeTable(w, res.Lineup)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Captain: %s (%s, %s), %.1f expected points\n",
		res.Captain.Name, res.Captain.Position, res.Captain.Club, res.Captain.ExpectedPoints)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Summary ---")
	fmt.Fprintf(w, "Squad Total Cost:            %.1f million\n", res.SquadCost)
	fmt.Fprintf(w, "Squad Expected Points:       %.1f\n", res.SquadPoints)
	fmt.Fprintf(w, "Lineup Total Cost:           %.1f million\n", res.LineupCost)
	fmt.Fprintf(w, "Lineup Expected Points:      %.1f\n", res.LineupPoints)
	fmt.Fprintf(w, "Squad Solve Status:          %s\n", res.SquadStatus)
	fmt.Fprintf(w, "Lineup Solve Status:         %s\n", res.LineupStatus)
}

func writeTable(w io.Writer, players []catalog.Player) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Position", "Club", "Price", "Expected"})
	for _, p := range players {
		table.Append([]string{
			p.Name,
			string(p.Position),
			p.Club,
			fmt.Sprintf("%.1f", p.Price),
			fmt.Sprintf("%.1f", p.ExpectedPoints),
		})
	}
	table.Render()
}
