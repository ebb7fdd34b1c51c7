package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

const barWidth = 20

// Styles
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	blockerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func ratingStyle(r assessment.Rating) lipgloss.Style {
	switch r {
	case assessment.RatingLow:
		return lowStyle
	case assessment.RatingMedium:
		return mediumStyle
	default:
		return highStyle
	}
}

// WriteConsole renders the styled terminal report: header panel, summary
// and project tables, complexity bars, blockers and recommendations.
func WriteConsole(w io.Writer, result *assessment.Result) error {
	var b strings.Builder

	writeHeader(&b, result)
	writeSummaryTable(&b, result.Summary)
	writeProjectTable(&b, result.Projects)
	writeBreakdown(&b, result.Summary.Complexity)
	writeBlockers(&b, result.Summary.Blockers)
	writeRecommendations(&b, result.Summary)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, result *assessment.Result) {
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("ADO Migration Readiness Report"),
		"Organization: "+dimStyle.Render(result.OrganizationURL),
		"Scanned: "+dimStyle.Render(result.ScannedAt.Format("2006-01-02 15:04")),
	)
	b.WriteString("\n" + panelStyle.Render(header) + "\n")
}

func writeSummaryTable(b *strings.Builder, s assessment.Summary) {
	columns := []table.Column{
		{Title: "Asset Type", Width: 14},
		{Title: "Count", Width: 8},
		{Title: "Complexity", Width: 12},
		{Title: "Est. Effort", Width: 14},
	}

	// Cell text stays unstyled; the table truncates on plain rune width
	// and would cut escape sequences in half.
	rows := []table.Row{
		summaryRow("Repositories", s.TotalRepositories, s.Complexity.Repositories),
		summaryRow("Pipelines", s.TotalPipelines, s.Complexity.Pipelines),
		summaryRow("Work Items", s.TotalWorkItems, s.Complexity.WorkItems),
		{"Test Plans", comma(s.TotalTestPlans), "N/A", "Manual review"},
	}

	b.WriteString("\n" + titleStyle.Render("📊 Summary") + "\n")
	b.WriteString(renderTable(columns, rows))

	overall := ratingStyle(s.Complexity.Rating).Render(
		fmt.Sprintf("%s (%d/100)", s.Complexity.Rating, s.Complexity.Overall))
	b.WriteString("\n" + boldStyle.Render("Overall Migration Complexity:") + " " + overall + "\n")
}

func summaryRow(label string, count int, cs assessment.CategoryScore) table.Row {
	return table.Row{label, comma(count), string(cs.Rating), cs.Effort}
}

func writeProjectTable(b *strings.Builder, projects []assessment.Project) {
	columns := []table.Column{
		{Title: "Project", Width: 24},
		{Title: "Repos", Width: 7},
		{Title: "Pipelines", Width: 11},
		{Title: "Work Items", Width: 12},
		{Title: "Notes", Width: 34},
	}

	rows := make([]table.Row, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, table.Row{
			p.Name,
			comma(p.Repositories.Count),
			comma(pipelineCount(p)),
			comma(p.WorkItems.Total),
			projectNotes(p),
		})
	}

	b.WriteString("\n" + titleStyle.Render("📁 Projects") + "\n")
	b.WriteString(renderTable(columns, rows))
}

// renderTable renders a static table without row selection.
func renderTable(columns []table.Column, rows []table.Row) string {
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
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return t.View() + "\n"
}

func writeBreakdown(b *strings.Builder, c assessment.Complexity) {
	b.WriteString("\n" + boldStyle.Render("📈 Complexity Breakdown:") + "\n")
	writeBar(b, "Repositories", c.Repositories)
	writeBar(b, "Pipelines", c.Pipelines)
	writeBar(b, "Work Items", c.WorkItems)
}

func writeBar(b *strings.Builder, label string, cs assessment.CategoryScore) {
	bar := ratingStyle(cs.Rating).Render(progressBar(cs.Score))
	fmt.Fprintf(b, "  %-15s %s %d/100\n", label, bar, cs.Score)
}

func progressBar(score int) string {
	filled := score * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func writeBlockers(b *strings.Builder, blockers []string) {
	if len(blockers) == 0 {
		b.WriteString("\n" + lowStyle.Render("✅ No major blockers identified!") + "\n")
		return
	}

	b.WriteString("\n" + blockerStyle.Render("⚠️  Migration Blockers:") + "\n")
	for _, blocker := range blockers {
		fmt.Fprintf(b, "  • %s\n", blocker)
	}
}

func writeRecommendations(b *strings.Builder, s assessment.Summary) {
	b.WriteString("\n" + boldStyle.Render("💡 Recommendations:") + "\n")
	for _, rec := range recommendations(s) {
		fmt.Fprintf(b, "  %s\n", rec)
	}
	b.WriteString("\n")
}

// recommendations keeps the numbered base list stable and splices in the
// TFVC phase and test plan lines only when the scan found those assets.
func recommendations(s assessment.Summary) []string {
	recs := []string{
		"1. Start with repositories - they have the lowest complexity",
		"2. Use GitHub Enterprise Importer (GEI) for repo migration",
		"3. Convert Classic pipelines to YAML before migrating",
		"4. Plan work item migration separately - consider GitHub Issues or Projects",
		"5. Review service connections and variable groups for secrets handling",
	}

	if s.TFVCProjects > 0 {
		recs = append(recs[:1], append([]string{"⚠️  Plan TFVC to Git conversion as a separate phase"}, recs[1:]...)...)
	}
	if s.TotalTestPlans > 0 {
		recs = append(recs, "6. Test Plans don't migrate - evaluate GitHub Actions for testing")
	}
	return recs
}
