package httpapi

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain/migration"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

func dialProgress(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/ws/progress"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	// The handler subscribes after the upgrade; wait until it has.
	deadline := time.Now().Add(2 * time.Second)
	for ts.hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ts.hub.Count() == 0 {
		t.Fatal("progress subscriber never registered")
	}
	return conn
}

func TestProgressSocketStreamsScanEvents(t *testing.T) {
	ts := newTestServer(t)
	conn := dialProgress(t, ts)

	event := progress.NewScanEvent(application.ScanScanning, 40)
	event.CurrentProject = "alpha"
	event.TotalProjects = 2
	ts.hub.Publish(event)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received struct {
		Type           string `json:"type"`
		Status         string `json:"status"`
		Progress       int    `json:"progress"`
		CurrentProject string `json:"current_project"`
	}
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("read event: %v", err)
	}

	if received.Type != "scan" {
		t.Errorf("type = %q, want scan", received.Type)
	}
	if received.Status != application.ScanScanning || received.Progress != 40 {
		t.Errorf("event = %+v", received)
	}
	if received.CurrentProject != "alpha" {
		t.Errorf("current_project = %q, want alpha", received.CurrentProject)
	}
}

func TestProgressSocketStreamsMigrationEvents(t *testing.T) {
	ts := newTestServer(t)
	conn := dialProgress(t, ts)

	ts.hub.Publish(progress.NewMigrationEvent(application.MigrationInProgress, map[string]migration.Item{
		"api": {Repo: "api", Status: migration.StatusInProgress, Message: "Starting migration..."},
	}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received struct {
		Type   string `json:"type"`
		Status string `json:"status"`
		Repos  map[string]struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"repos"`
	}
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("read event: %v", err)
	}

	if received.Type != "migration" {
		t.Errorf("type = %q, want migration", received.Type)
	}
	if received.Repos["api"].Status != "in_progress" {
		t.Errorf("repos = %+v", received.Repos)
	}
}

func TestProgressSocketClientDisconnect(t *testing.T) {
	ts := newTestServer(t)
	conn := dialProgress(t, ts)

	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ts.hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := ts.hub.Count(); got != 0 {
		t.Errorf("hub.Count() = %d after disconnect, want 0", got)
	}
}
