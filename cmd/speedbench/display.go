package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"speedbench/internal/benchmark"
	"speedbench/internal/db"
	"speedbench/internal/harness"
)

var (
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// printReport writes the artifact paths and a per-variant summary table.
func printReport(w io.Writer, r *harness.Report) {
	fmt.Fprintln(w, headlineStyle.Render(fmt.Sprintf("Sweep finished: %d runs", r.Dataset.Len())))
	fmt.Fprintf(w, "Data:  %s\n", pathStyle.Render(r.DataFile))
	fmt.Fprintf(w, "Chart: %s\n", pathStyle.Render(r.ChartFile))
	if r.HistoryID != 0 {
		fmt.Fprintf(w, "History id: %d\n", r.HistoryID)
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Variant", "Points", "Best threads", "Best speedup", "Efficiency"})
	for _, s := range benchmark.Summarize(r.Dataset) {
		table.Append([]string{
			benchmark.VariantKey(s.Variant),
			strconv.Itoa(s.Points),
			strconv.Itoa(s.BestThreads),
			fmt.Sprintf("%.2fx", s.BestSpeedup),
			fmt.Sprintf("%.0f%%", s.Efficiency*100),
		})
	}
	table.Render()
}

// printHistory writes past sweeps as a table.
func printHistory(w io.Writer, sweeps []db.SweepRecord) {
	if len(sweeps) == 0 {
		fmt.Fprintln(w, "No sweeps recorded.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Started", "Host", "Procs", "Runs", "Data file", "Chart"})
	for _, s := range sweeps {
		table.Append([]string{
			strconv.FormatInt(s.ID, 10),
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Host,
			strconv.Itoa(s.Procs),
			strconv.Itoa(s.RunCount),
			s.DataFile,
			s.ChartFile,
		})
	}
	table.Render()
}
