package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/ado"
)

// maxProjectRows caps the connection check listing; large organizations
// get an overflow line instead of a wall of rows.
const maxProjectRows = 10

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Verify the stored credentials against Azure DevOps",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return MapError(err)
		}
		cfg, err := repo.LoadADOConfig()
		if err != nil {
			return MapError(err)
		}

		fmt.Printf("Testing connection to %s...\n", cfg.OrganizationURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		projects, err := ado.New(cfg.OrganizationURL, cfg.PAT).ListProjects(ctx)
		if err != nil {
			return MapError(fmt.Errorf("connection failed: %w", err))
		}

		fmt.Println(okText.Render("✅ Connected successfully!"))
		fmt.Printf("   Found %d projects\n\n", len(projects))

		shown := projects
		if len(shown) > maxProjectRows {
			shown = shown[:maxProjectRows]
		}
		rows := make([]table.Row, 0, len(shown))
		for _, p := range shown {
			rows = append(rows, table.Row{p.Name, truncate(p.Description, 50)})
		}
		fmt.Println(renderProjectRows(rows))

		if extra := len(projects) - maxProjectRows; extra > 0 {
			fmt.Println(dimText.Render(fmt.Sprintf("   ... and %d more projects", extra)))
		}
		return nil
	},
}

// renderProjectRows renders a static table without row selection.
func renderProjectRows(rows []table.Row) string {
	columns := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Description", Width: 52},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Bold(true)
	// Disable selection style for static view
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return t.View()
}

// truncate caps a string to max runes; ADO project descriptions can be
// arbitrarily long.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func init() {
	RootCmd.AddCommand(testConnectionCmd)
}
