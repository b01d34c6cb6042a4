package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		checkAt = ""
		checkTimezone = "UTC"
		versionJSON = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validSchedule = `
actions:
  - name: standup
    schedule: "0 9 * * 1-5"
    channel: C1
    text: standup
  - name: weekend
    schedule: "0 9 * * SAT,SUN"
    channel: C2
    text: enjoy
`

func TestRootCommand_HasSubcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
		assert.NotEmpty(t, cmd.Short, "command %s should have short description", cmd.Name())
	}
	assert.Subset(t, names, []string{"serve", "schedule", "version"})
}

func TestScheduleCheck_Valid(t *testing.T) {
	out, err := execute(t, "schedule", "check", writeFile(t, validSchedule))
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (2 actions)")
	assert.Contains(t, out, `standup: "0 9 * * 1-5" -> C1`)
}

func TestScheduleCheck_DueAt(t *testing.T) {
	// 2024-06-01 is a Saturday; 13:00 UTC is 09:00 in New York.
	out, err := execute(t, "schedule", "check", writeFile(t, validSchedule),
		"--at", "2024-06-01T13:00:00Z", "--timezone", "America/New_York")
	require.NoError(t, err)
	assert.Contains(t, out, "Due at 2024-06-01T09:00:00-04:00 (1):")
	assert.Contains(t, out, "  - weekend")
}

func TestScheduleCheck_Invalid(t *testing.T) {
	_, err := execute(t, "schedule", "check", writeFile(t, "actions:\n  - name: x\n    schedule: \"60 * * * *\"\n    channel: C1\n    text: hi\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of bounds")

	_, err = execute(t, "schedule", "check", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVersion_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var version VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &version))
	assert.Equal(t, Version, version.Version)
}

func TestServe_FailsWithoutConfiguration(t *testing.T) {
	t.Setenv("PIGEON_TOKEN", "")
	t.Setenv("PIGEON_SECRET", "")

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PIGEON_TOKEN")
}

func setServeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PIGEON_TOKEN", "xoxb-test")
	t.Setenv("PIGEON_SECRET", "secret")
	t.Setenv("PIGEON_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")
}

func TestServe_ReturnsBuildErrors(t *testing.T) {
	setServeEnv(t)
	t.Setenv("PIGEON_SCHEDULE_FILE", writeFile(t, "actions:\n  - name: broken\n"))

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build bot")
}

func TestServe_ReturnsListenErrors(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	setServeEnv(t)
	t.Setenv("PIGEON_PORT", strconv.Itoa(busy.Addr().(*net.TCPAddr).Port))

	_, err = execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot stopped")
	assert.Contains(t, err.Error(), "failed to listen")
}
