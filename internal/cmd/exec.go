package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/sync/errgroup"

	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/services"
	"github.com/renato0307/sqldesk/internal/theme"
)

// ExecCmd runs one or more queries, each in its own tab, concurrently
type ExecCmd struct {
	Format string   `help:"Output format: table, csv or json" enum:"table,csv,json" default:"table" short:"f"`
	SQL    []string `help:"SQL to run (repeat for several tabs)" name:"sql" short:"e" required:""`
}

// Run executes the exec command
func (e *ExecCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Container.CheckConnection(ctx); err != nil {
		return err
	}

	session := cli.Container.NewSession(ctx)
	tabs, err := runTabs(ctx, session.Queries, e.SQL)
	if err != nil {
		return err
	}

	failed := 0
	for i, tab := range tabs {
		if i > 0 {
			fmt.Println()
		}
		if err := e.print(os.Stdout, cli.Container.ExportService, tab); err != nil {
			return err
		}
		if tab.Result == nil || tab.Result.Failed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(tabs))
	}
	return nil
}

// runTabs opens one tab per statement and executes them all concurrently.
// It returns the tabs in statement order once every execution resolved.
func runTabs(ctx context.Context, queries *services.QueryService, statements []string) ([]domain.QueryTab, error) {
	store := queries.Store()

	tabIDs := make([]string, len(statements))
	for i := range statements {
		tab := store.ActiveTab()
		if i > 0 {
			tab = store.AddTab()
		}
		store.SetTabSQL(tab.ID, statements[i])
		tabIDs[i] = tab.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, sql := range statements {
		tabID := tabIDs[i]
		g.Go(func() error {
			res := queries.Execute(gctx, tabID, sql)
			logging.Logger.Debug("Exec statement resolved",
				"tab_id", tabID,
				"success", !res.Result.Failed())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tabs := make([]domain.QueryTab, len(tabIDs))
	for i, id := range tabIDs {
		tab, ok := store.Tab(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrTabNotFound, id)
		}
		tabs[i] = tab
	}
	return tabs, nil
}

func (e *ExecCmd) print(w io.Writer, exporter *services.ExportService, tab domain.QueryTab) error {
	if tab.Result == nil {
		return fmt.Errorf("%w: %s has no result", domain.ErrTabNotFound, tab.ID)
	}
	result := *tab.Result

	if result.Failed() {
		fmt.Fprintln(w, theme.FailureStyle.Render(fmt.Sprintf("%s: %s", tab.Title, result.Error)))
		return nil
	}

	switch services.ExportFormat(e.Format) {
	case services.ExportCSV, services.ExportJSON:
		return exporter.Write(w, result, services.ExportFormat(e.Format))
	}

	if len(result.Columns) == 0 {
		fmt.Fprintln(w, theme.TitleStyle.Render(tab.Title)+" "+
			theme.MutedStyle.Render(fmt.Sprintf("%d rows affected · %d ms", result.RowCount, result.ExecutionTimeMs)))
		return nil
	}

	fmt.Fprintln(w, theme.TitleStyle.Render(tab.Title)+" "+
		theme.MutedStyle.Render(fmt.Sprintf("%d rows · %d ms", result.RowCount, result.ExecutionTimeMs)))
	fmt.Fprintln(w, renderResultTable(result))
	return nil
}

// renderResultTable renders a result as a bordered lipgloss table
func renderResultTable(result domain.QueryResult) string {
	headers := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		headers[i] = c.Name
	}

	rows := make([][]string, len(result.Rows))
	for r, src := range result.Rows {
		row := make([]string, len(headers))
		for c := range headers {
			if c < len(src) {
				row[c] = domain.FormatValue(src[c])
			}
		}
		rows[r] = row
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeaderStyle
			}
			return theme.TableCellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}
