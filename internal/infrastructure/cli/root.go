package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Shared styles for command output.
var (
	okText   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnText = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	failText = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimText  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "adoready",
	Version: Version,
	Short:   "Assess and drive Azure DevOps to GitHub migrations",
	Long: `Adoready measures how ready an Azure DevOps organization is for a
move to GitHub. It answers three questions:
1. What assets does each project hold?
2. How complex will they be to migrate?
3. Which repositories can move today?

Scan results are cached locally and feed the report, serve, and
migrate commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	// Global flags can be defined here
}
