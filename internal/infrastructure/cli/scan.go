package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/report"
	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

var (
	scanProject string
	scanOutput  string
	scanPlain   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the organization and score migration complexity",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return MapError(err)
		}

		// Subscribe before starting so the first events are not lost.
		events, unsubscribe := svc.Hub.Subscribe()
		defer unsubscribe()

		if err := svc.Scans.StartScan(scanProject); err != nil {
			return MapError(err)
		}

		if scanPlain || !term.IsTerminal(os.Stdout.Fd()) {
			err = followScanPlain(svc.Scans, events)
		} else {
			err = followScanTUI(svc.Scans, events)
		}
		if err != nil {
			return MapError(err)
		}

		result, err := svc.Scans.Result()
		if err != nil {
			return MapError(err)
		}

		fmt.Println()
		if err := report.WriteConsole(os.Stdout, result); err != nil {
			return fmt.Errorf("render summary: %w", err)
		}

		if scanOutput != "" {
			if err := writeReportFile(scanOutput, report.FormatJSON, result); err != nil {
				return fmt.Errorf("save results: %w", err)
			}
			fmt.Println(okText.Render("✅ Results saved to " + scanOutput))
		}

		fmt.Println(dimText.Render("\nRun 'adoready report --format html -o report.html' for a detailed report"))
		return nil
	},
}

// followScanPlain prints one line per project until the scan reaches a
// terminal status. The ticker keeps it moving even if every hub event
// is dropped.
func followScanPlain(scans *application.ScanService, events <-chan progress.Event) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case <-ticker.C:
		}

		st := scans.Status()
		if st.CurrentProject != "" && st.CurrentProject != last {
			fmt.Printf("Scanning %s... (%d/%d)\n", st.CurrentProject, st.ProjectsScanned+1, st.TotalProjects)
			last = st.CurrentProject
		}
		switch st.Status {
		case application.ScanCompleted:
			return nil
		case application.ScanFailed:
			return fmt.Errorf("scan failed: %s", st.Error)
		}
	}
}

func init() {
	scanCmd.Flags().StringVarP(&scanProject, "project", "p", "", "restrict the scan to one project")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write the full scan result as JSON to a file")
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false, "line output instead of the progress view")
	RootCmd.AddCommand(scanCmd)
}
