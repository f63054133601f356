package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/farxc/fleet_occupancy/internal/response"
)

// RenderJSON writes the report wrapped in a response envelope.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(response.OK(r, r.Warnings...))
}

// RenderText writes the report as aligned plain-text tables.
func RenderText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Resumo de Ocupação")
	fmt.Fprintf(tw, "Filtro de unidade: %s\n\n", r.Filter)

	fmt.Fprintln(tw, "KPIs de Ocupação")
	for _, k := range r.KPIs {
		fmt.Fprintf(tw, "%s - %s\t%.2f%%\n", k.Unit, k.Class, k.Percent)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(tw, "AVISO: %s\n", warn)
	}

	fmt.Fprintln(tw, "\nTabela de Resumo de Ocupação")
	fmt.Fprintln(tw, "Unidade\tGrupo\tOcupação (%)\tAlugados\tQtd. Total")
	for _, s := range r.Summary {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%d\n", s.Unit, s.GroupClass, s.OccupancyPercent, s.Rented, s.Total)
	}

	fmt.Fprintln(tw, "\nEvolução da Ocupação")
	fmt.Fprintln(tw, "Data\tOcupação (%)\tAlugados\tLinhas")
	for _, p := range r.TimeSeries {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%d\n", p.Label, p.Percent, p.Rented, p.Count)
	}

	fmt.Fprintln(tw, "\nTaxa de Ocupação por Grupo")
	fmt.Fprintln(tw, "Grupo\tOcupação (%)\tAlugados\tLinhas")
	for _, g := range r.ByGroup {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%d\n", g.Group, g.Percent, g.Rented, g.Count)
	}

	for _, c := range r.Comparison {
		fmt.Fprintf(tw, "\nComparativo %s\n", c.Class)
		for _, u := range c.Units {
			fmt.Fprintf(tw, "%s\t%.2f%%\t(%d de %d)\n", u.Unit, u.Percent, u.Rented, u.Total)
		}
	}

	fmt.Fprintln(tw, "\nDistribuição de Status")
	fmt.Fprintln(tw, "Status\tQuantidade")
	for _, s := range r.Statuses {
		fmt.Fprintf(tw, "%s\t%d\n", s.Status, s.Count)
	}

	if len(r.Runs) > 0 {
		fmt.Fprintln(tw, "\nExecuções recentes")
		fmt.Fprintln(tw, "ID\tEtapa\tStatus\tInício\tLidas\tMantidas\tMensagem")
		for _, run := range r.Runs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n", run.ID, run.Stage, run.Status,
				run.StartedAt.Format("2006-01-02 15:04:05"), run.RowsRead, run.RowsKept, run.Message)
		}
	}

	return tw.Flush()
}

// RenderJSONError writes err in the JSON error shape.
func RenderJSONError(w io.Writer, err error) error {
	return json.NewEncoder(w).Encode(response.Failure(err))
}
