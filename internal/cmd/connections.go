package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/renato0307/sqldesk/internal/domain"
)

// ConnectionsCmd manages connection profiles
type ConnectionsCmd struct {
	List ConnectionsListCmd `cmd:"list" help:"List configured connection profiles" default:"1"`
}

// ConnectionsListCmd lists connection profiles
type ConnectionsListCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the list command
func (c *ConnectionsListCmd) Run(cli *CLI) error {
	conns := cli.settings.Connections
	if len(conns) == 0 {
		conns = []domain.Connection{domain.DefaultConnection}
	}
	active := cli.Container.Connection.Name

	if c.Format == "json" {
		type entry struct {
			domain.Connection
			Active bool `json:"active"`
		}
		out := make([]entry, len(conns))
		for i, conn := range conns {
			conn.DSN = ""
			out[i] = entry{Connection: conn, Active: conn.Name == active}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tDRIVER\tDATABASE")
	for _, conn := range conns {
		marker := ""
		if conn.Name == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, conn.Name, conn.Driver, conn.Database)
	}
	return w.Flush()
}
