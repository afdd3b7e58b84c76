package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"sjsage522/refundscraper/internal/invoice"
	"sjsage522/refundscraper/services/worker"
)

// renderGames prints one row per scraped game
func renderGames(w io.Writer, results []worker.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Channel", "Title", "Show", "Type", "Number", "Cost", "Deadline", "URL"})

	total := 0
	for _, r := range results {
		if r.Err != nil {
			t.AppendRow(table.Row{r.Channel, "error: " + r.Err.Error()})
			continue
		}
		for _, g := range r.Records {
			t.AppendRow(table.Row{
				g.Channel,
				g.Title,
				g.ShowName,
				g.GameType,
				g.PhoneNumber,
				g.Cost.StringFixed(2),
				g.RefundDeadlineDays,
				g.SourceURL,
			})
			total++
		}
	}

	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", total})
	t.Render()
}

// renderFees prints one row per fee found on an invoice
func renderFees(w io.Writer, fees []invoice.InvoiceGameFee) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Date", "Number", "Amount", "Game"})
	for _, f := range fees {
		t.AppendRow(table.Row{f.Date.Format("02/01/2006"), f.PhoneNumber, f.Amount.StringFixed(2) + " €", f.GameID})
	}
	t.AppendFooter(table.Row{"", "", "Fees", len(fees)})
	t.Render()
}
