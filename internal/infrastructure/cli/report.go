package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/report"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

var (
	reportFormat   string
	reportOutput   string
	reportScanFile string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the latest scan as console, HTML, or JSON output",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(reportFormat)
		if err != nil {
			return NewCLIError(err.Error(), "Choose --format console, html, or json", err)
		}
		if format != report.FormatConsole && reportOutput == "" {
			return NewCLIError(
				fmt.Sprintf("--output is required for %s format", format),
				"Pass -o with a destination file",
				nil,
			)
		}

		result, err := loadReportResult()
		if err != nil {
			return MapError(err)
		}

		if reportOutput == "" {
			return report.Write(os.Stdout, format, result)
		}
		if err := writeReportFile(reportOutput, format, result); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		fmt.Println(okText.Render("✅ Report saved to " + reportOutput))
		return nil
	},
}

// loadReportResult reads the result from --scan-file when given,
// otherwise from the local scan cache.
func loadReportResult() (*assessment.Result, error) {
	if reportScanFile != "" {
		data, err := os.ReadFile(reportScanFile)
		if err != nil {
			return nil, fmt.Errorf("read scan file: %w", err)
		}
		var result assessment.Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("parse scan file %s: %w", reportScanFile, err)
		}
		return &result, nil
	}

	repo, err := openRepo()
	if err != nil {
		return nil, err
	}
	return repo.LoadScanCache()
}

func writeReportFile(path string, format report.Format, result *assessment.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Write(f, format, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "console", "output format: console, html, or json")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "destination file")
	reportCmd.Flags().StringVarP(&reportScanFile, "scan-file", "s", "", "render a saved scan result instead of the cache")
	RootCmd.AddCommand(reportCmd)
}
