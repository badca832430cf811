package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/renato0307/sqldesk/internal/domain"
)

// HistoryCmd manages the persisted query history
type HistoryCmd struct {
	List  HistoryListCmd  `cmd:"list" help:"List recent executions" default:"1"`
	Clear HistoryClearCmd `cmd:"clear" help:"Delete the whole query history"`
}

// HistoryListCmd lists recent executions
type HistoryListCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
	Limit  int    `help:"Maximum number of entries (0 = all)" default:"20" short:"n"`
}

// Run executes the list command
func (h *HistoryListCmd) Run(cli *CLI) error {
	ctx := context.Background()
	session := cli.Container.NewSession(ctx)

	entries, err := session.History.List(ctx, h.Limit)
	if err != nil {
		return err
	}

	if h.Format == "json" {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No queries executed yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXECUTED\tSTATUS\tDATABASE\tROWS\tMS\tSQL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			e.ExecutedAt.Local().Format(time.DateTime),
			historyStatus(e),
			e.Database,
			e.RowCount,
			e.ExecutionTimeMs,
			e.SQLPreview(60))
	}
	return w.Flush()
}

// historyStatus stays unstyled: escape codes would break tabwriter alignment
func historyStatus(e domain.QueryHistoryEntry) string {
	if e.Success {
		return "ok"
	}
	return "failed"
}

// HistoryClearCmd deletes the query history
type HistoryClearCmd struct {
	Force bool `help:"Skip confirmation prompt" short:"f"`
}

// Run executes the clear command
func (h *HistoryClearCmd) Run(cli *CLI) error {
	if !h.Force {
		confirmed := false
		err := huh.NewConfirm().
			Title("Clear query history?").
			Description("Every recorded execution will be deleted.").
			Affirmative("Clear").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			fmt.Println("Cancelled")
			return nil
		}
	}

	ctx := context.Background()
	session := cli.Container.NewSession(ctx)
	if err := session.History.Clear(ctx); err != nil {
		return err
	}

	fmt.Println("Query history cleared")
	return nil
}
