package main

import (
	"fmt"
	"os"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	browsePage  int
	browseLimit int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List one page of the backend catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		limit := browseLimit
		if !cmd.Flags().Changed("limit") {
			limit = cfg.PageSize
		}
		page, err := app.API.BrowseAll(cmd.Context(), browsePage, limit)
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			fmt.Println("Keine Animes gefunden.")
			return nil
		}
		fmt.Fprintln(os.Stdout, summaryTable(page.Items))
		fmt.Println(util.Title(fmt.Sprintf("Seite %d von %d (%d Animes)", page.Page, page.LastPage(), page.Total)))
		return nil
	},
}

func init() {
	browseCmd.Flags().IntVar(&browsePage, "page", 1, "page number")
	browseCmd.Flags().IntVar(&browseLimit, "limit", 20, "entries per page (default: configured page size)")
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C084FC")).Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func summaryTable(items []models.AnimeSummary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))).
		Headers("Titel", "Typ", "Jahr", "Studio", "Session").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, a := range items {
		t.Row(a.Title, util.OrNA(a.Type), util.OrNA(a.Year), util.OrNA(a.Studio), a.Session)
	}
	return t.Render()
}
