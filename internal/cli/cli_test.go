package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zn-har/Bingo/internal/api"
	"github.com/zn-har/Bingo/internal/api/response"
	"github.com/zn-har/Bingo/internal/factory"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/testutil"
)

type cliHarness struct {
	app        *factory.TestApp
	server     *httptest.Server
	playerFile string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("BINGO_PLAYER", "")

	app := factory.NewTestApp()
	require.NoError(t, app.Bootstrap(t.Context()))

	server := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		Clock:          app.Clock,
		PlayerService:  app.PlayerService,
		BoardService:   app.BoardService,
		ScanController: app.ScanController,
		GameService:    app.GameService,
		TaskService:    app.TaskService,
		Hub:            app.Hub,
		Publisher:      app.Broadcaster,
		Metrics:        app.Metrics,
	}))
	t.Cleanup(server.Close)

	// Cleanups run in reverse, so open streams end before the server closes
	go app.Hub.Run()
	t.Cleanup(app.Hub.Close)

	return &cliHarness{
		app:        app,
		server:     server,
		playerFile: filepath.Join(t.TempDir(), "player"),
	}
}

func (h *cliHarness) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--server", h.server.URL,
		"--player-file", h.playerFile,
		"--output", "json",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *cliHarness) register(t *testing.T, id, name, phone string) {
	t.Helper()
	h.app.MockIDs.Queue(model.PlayerID(id))
	_, err := h.run("register", "--name", name, "--phone", phone)
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("health")
	require.NoError(t, err)

	var result response.Health
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "ok", result.Status)
}

func TestRegisterSavesPlayer(t *testing.T) {
	h := newHarness(t)
	h.app.MockIDs.Queue("alice")

	out, err := h.run("register", "--name", "Alice", "--phone", "98765 43210")
	require.NoError(t, err)

	var result response.RegisterResponse
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Created)
	assert.Equal(t, "alice", result.Player.ID)

	saved, err := os.ReadFile(h.playerFile)
	require.NoError(t, err)
	assert.Equal(t, "alice", string(saved))

	// The saved player is the default for player commands
	out, err = h.run("player", "get")
	require.NoError(t, err)
	var p response.Player
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Alice", p.Name)
}

func TestPlayerCommandsNeedAPlayer(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("player", "board")
	assert.ErrorIs(t, err, errNoPlayer)
}

func TestScanAndVerify(t *testing.T) {
	h := newHarness(t)
	h.register(t, "bob", "Bob", "9000000002")
	h.register(t, "alice", "Alice", "9000000001")

	out, err := h.run("scan", "--target", "bob", "--task", "1")
	require.NoError(t, err)

	var result response.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "alice", result.Scan.ScannerID)
	assert.Equal(t, "Bob", result.TargetName)

	_, err = h.run("scan", "--target", "alice", "--task", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SELF_SCAN")

	out, err = h.run("scan", "verify", "1", "--status", "rejected")
	require.NoError(t, err)
	var scan response.Scan
	require.NoError(t, json.Unmarshal([]byte(out), &scan))
	assert.Equal(t, "rejected", scan.Status)

	out, err = h.run("player", "scans")
	require.NoError(t, err)
	var scans []response.Scan
	require.NoError(t, json.Unmarshal([]byte(out), &scans))
	assert.Len(t, scans, 1)
}

func TestGameUpdate(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("game", "update", "--max-winners", "3", "--allow-duplicate-targets=false")
	require.NoError(t, err)

	var state response.GameState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, 3, state.MaxWinners)
	assert.False(t, state.AllowDuplicateTargets)
	assert.True(t, state.GameActive)

	_, err = h.run("game", "update")
	assert.Error(t, err)

	out, err = h.run("game", "state")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, 3, state.MaxWinners)
}

func TestTasksAndWinners(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("tasks")
	require.NoError(t, err)
	var tasks []response.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	assert.Len(t, tasks, model.BoardCells)

	out, err = h.run("winners")
	require.NoError(t, err)
	var winners []response.Winner
	require.NoError(t, json.Unmarshal([]byte(out), &winners))
	assert.Empty(t, winners)
}

func TestPlayerQR(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "Alice", "9000000001")

	path := filepath.Join(t.TempDir(), "alice.png")
	_, err := h.run("player", "qr", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestBoardTextOutput(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "Alice", "9000000001")

	out, err := h.run("--output", "text", "player", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "Board for alice")
	assert.Contains(t, out, ". . * . .")
	assert.Contains(t, out, "Lines: 0")
}

func TestEventsStream(t *testing.T) {
	h := newHarness(t)

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := h.run("events", "--json", "--limit", "1")
		done <- result{out, err}
	}()

	require.Eventually(t, func() bool {
		return h.app.Hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.app.MockIDs.Queue("alice")
	resp, err := http.Post(h.server.URL+"/api/v1/players", "application/json",
		strings.NewReader(`{"name":"Alice","phone":"9000000001"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		var evt SSEEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(r.out)), &evt))
		assert.Equal(t, string(model.EventPlayerRegistered), evt.Event)
		assert.Contains(t, evt.Data, `"name":"Alice"`)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
