package cli

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// setHome points the settings directory at a fresh temp dir.
func setHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ADOREADY_HOME", dir)
	return dir
}

// runCommand executes the root command with the given args.
func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags()
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
	RootCmd.SetOut(io.Discard)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

// resetFlags restores flag-bound variables to their defaults; cobra
// keeps parsed values across Execute calls.
func resetFlags() {
	configureOrg, configurePAT, configureProject = "", "", ""
	configureGitHubToken, configureGitHubOrg = "", ""
	scanProject, scanOutput, scanPlain = "", "", false
	reportFormat, reportOutput, reportScanFile = "console", "", ""
	migrateRepos, migrateTargetOrg, migrateVisibility, migratePreflight = nil, "", "private", false
	serveAddr = ":8000"
}

// captureStdout runs fn and returns everything it printed. Commands
// write through fmt.Print to the real stdout, so tests swap the fd.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	return <-done
}
