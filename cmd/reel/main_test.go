package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reel/internal/asset"
	syncdriver "reel/internal/sync"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "reel.toml")
	content := fmt.Sprintf(`[paths]
videos_dir = %q
log_dir = %q

[provider]
default = "mux"

[logging]
level = "error"
format = "console"
`, filepath.Join(base, "videos"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSyncCommandEmptyDirectory(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := executeCommand(t, "sync", "--config", cfgPath)
	if err != nil {
		t.Fatalf("sync failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "TOTAL FILES") {
		t.Fatalf("missing report table in output:\n%s", output)
	}
}

func TestStatusCommandWithoutAssets(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := executeCommand(t, "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "no tracked assets") {
		t.Fatalf("unexpected status output:\n%s", output)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := executeCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite init failed: %v", err)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "reel.toml")
	content := fmt.Sprintf(`[paths]
videos_dir = %q
log_dir = %q

[mux]
token_id = "id-123"
token_secret = "super-secret"
`, filepath.Join(base, "videos"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	output, err := executeCommand(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, output)
	}
	if strings.Contains(output, "super-secret") {
		t.Fatal("secret leaked into config show output")
	}
	if !strings.Contains(output, "id-123") {
		t.Fatalf("expected token id in output:\n%s", output)
	}
}

func TestRenderAssetTable(t *testing.T) {
	records := []*asset.Asset{{
		Status:           asset.StatusReady,
		OriginalFilePath: "clip.mp4",
		Provider:         "mux",
		Size:             2048,
		UpdatedAt:        time.Now().UnixMilli(),
	}}

	out := renderAssetTable(records, false)
	for _, cell := range []string{"clip.mp4", "ready", "mux", "2.0 KiB"} {
		if !strings.Contains(out, cell) {
			t.Fatalf("table missing %q:\n%s", cell, out)
		}
	}

	colored := renderAssetTable(records, true)
	if !strings.Contains(colored, "\x1b[") {
		t.Fatalf("colorized table carries no ANSI codes:\n%s", colored)
	}
}

func TestRenderReportTable(t *testing.T) {
	out := renderReportTable(&syncdriver.Report{TotalFiles: 3, Unprocessed: 2, Resumed: 1})
	if !strings.Contains(out, "TOTAL FILES") || !strings.Contains(out, "3") {
		t.Fatalf("report table missing cells:\n%s", out)
	}
}
