package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Ingramml/ca-lobby-mono/internal/format"
	"github.com/Ingramml/ca-lobby-mono/internal/warehouse"
)

func main() {
	ctx := context.Background()
	pool, err := warehouse.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := warehouse.NewStore(pool)
	stats, err := store.DatabaseStats(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Organizations: %s   Filings: %s   Coverage: %s to %s (%d years)\n",
		format.Number(float64(stats.Summary.TotalOrganizations)),
		format.Number(float64(stats.Summary.TotalFilings)),
		stats.Summary.EarliestFiling, stats.Summary.LatestFiling,
		stats.Summary.YearsCovered)
	fmt.Printf("Payments: %s totaling %s (avg %s)\n\n",
		format.Number(float64(stats.Payments.TotalPayments)),
		format.Currency(stats.Payments.TotalAmount, true),
		format.Currency(stats.Payments.AveragePayment, false))

	yearly := table.NewWriter()
	yearly.SetOutputMirror(os.Stdout)
	yearly.SetTitle("Activity by Year")
	yearly.AppendHeader(table.Row{"Year", "Organizations", "Filings"})
	for _, row := range stats.Yearly {
		yearly.AppendRow(table.Row{row.Year, row.Organizations, row.Filings})
	}
	yearly.Render()
	fmt.Println()

	govt := table.NewWriter()
	govt.SetOutputMirror(os.Stdout)
	govt.SetTitle("Spending by Government Type")
	govt.AppendHeader(table.Row{"Type", "Organizations", "Total Spending"})
	for _, row := range stats.GovtTypes {
		govt.AppendRow(table.Row{row.GovtType, row.OrgCount, format.Currency(row.TotalSpending, true)})
	}
	govt.Render()
	fmt.Println()

	top := table.NewWriter()
	top.SetOutputMirror(os.Stdout)
	top.SetTitle("Top Organizations")
	top.AppendHeader(table.Row{"Organization", "Total Spending"})
	for _, org := range stats.TopOrganizations {
		top.AppendRow(table.Row{org.Name, format.Currency(org.Amount, true)})
	}
	top.Render()
	fmt.Println()

	printRecentRuns(ctx, pool)
}

// printRecentRuns shows load history next to the data it produced.
func printRecentRuns(ctx context.Context, pool *pgxpool.Pool) {
	rows, err := pool.Query(ctx, `
		SELECT source_id, status, items_found, items_saved, errors, started_at, completed_at
		FROM ingest_runs ORDER BY started_at DESC LIMIT 10`)
	if err != nil {
		log.Printf("Failed to query ingest runs: %v", err)
		return
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Recent Ingest Runs")
	t.AppendHeader(table.Row{"Source", "Status", "Found", "Saved", "Errors", "Duration", "Started At"})

	for rows.Next() {
		var sourceID, status string
		var found, saved, errs int
		var startedAt time.Time
		var completedAt *time.Time

		if err := rows.Scan(&sourceID, &status, &found, &saved, &errs, &startedAt, &completedAt); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		duration := "Running..."
		if completedAt != nil {
			duration = completedAt.Sub(startedAt).Round(time.Second).String()
		}

		t.AppendRow(table.Row{sourceID, status, found, saved, errs, duration, startedAt.Format("2006-01-02 15:04:05")})
	}
	t.Render()
}
