package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/adoready/internal/infrastructure/report"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

func writeScanFixture(t *testing.T) string {
	t.Helper()
	projects := []assessment.Project{
		{
			Name:         "Fabrikam",
			Repositories: assessment.RepositorySection{Count: 2},
			Pipelines:    assessment.PipelineSection{YAMLCount: 1},
			WorkItems:    assessment.WorkItemSection{Total: 40},
			Teams:        assessment.TeamSection{Count: 1},
		},
	}
	result := &assessment.Result{
		OrganizationURL: "https://dev.azure.com/fabrikam",
		ScannedAt:       time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Projects:        projects,
		Summary:         assessment.Summarize(projects),
	}

	path := filepath.Join(t.TempDir(), "scan.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := report.WriteJSON(f, result); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReportNoCache(t *testing.T) {
	setHome(t)

	err := runCommand(t, "report")
	if err == nil {
		t.Fatal("expected an error without a cached scan")
	}
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %T", err)
	}
	if !strings.Contains(cliErr.Hint, "adoready scan") {
		t.Errorf("hint should point at scan, got %q", cliErr.Hint)
	}
}

func TestReportRequiresOutputForHTML(t *testing.T) {
	setHome(t)

	err := runCommand(t, "report", "--format", "html")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "--output is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReportUnknownFormat(t *testing.T) {
	setHome(t)

	err := runCommand(t, "report", "--format", "pdf")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "unknown report format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReportConsoleFromScanFile(t *testing.T) {
	setHome(t)
	fixture := writeScanFixture(t)

	out := captureStdout(t, func() {
		if err := runCommand(t, "report", "--scan-file", fixture); err != nil {
			t.Errorf("report: %v", err)
		}
	})

	if !strings.Contains(out, "ADO Migration Readiness Report") {
		t.Errorf("missing report header:\n%s", out)
	}
	if !strings.Contains(out, "Fabrikam") {
		t.Errorf("missing project row:\n%s", out)
	}
}

func TestReportHTMLToFile(t *testing.T) {
	setHome(t)
	fixture := writeScanFixture(t)
	outFile := filepath.Join(t.TempDir(), "report.html")

	out := captureStdout(t, func() {
		if err := runCommand(t, "report", "--scan-file", fixture, "--format", "html", "-o", outFile); err != nil {
			t.Errorf("report: %v", err)
		}
	})

	if !strings.Contains(out, "✅ Report saved to "+outFile) {
		t.Errorf("missing confirmation:\n%s", out)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("report file: %v", err)
	}
	if !strings.Contains(string(data), "<html") {
		t.Error("output does not look like HTML")
	}
	if !strings.Contains(string(data), "Fabrikam") {
		t.Error("project missing from HTML report")
	}
}

func TestReportReadsCache(t *testing.T) {
	setHome(t)

	repo, err := openRepo()
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	projects := []assessment.Project{{Name: "Cached"}}
	if err := repo.SaveScanCache(&assessment.Result{
		OrganizationURL: "https://dev.azure.com/cached",
		ScannedAt:       time.Now().UTC(),
		Projects:        projects,
		Summary:         assessment.Summarize(projects),
	}); err != nil {
		t.Fatal(err)
	}

	out := captureStdout(t, func() {
		if err := runCommand(t, "report"); err != nil {
			t.Errorf("report: %v", err)
		}
	})
	if !strings.Contains(out, "Cached") {
		t.Errorf("cache content missing:\n%s", out)
	}
}
