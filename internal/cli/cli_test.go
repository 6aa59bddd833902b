package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/prooftower/pkg/config"
)

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"render", "snapshot", "explore", "serve", "cache", "config", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestConfiguredLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	c.ConfigPath = path
	if got := c.ConfiguredLevel(); got != LogDebug {
		t.Errorf("ConfiguredLevel() = %v, want debug", got)
	}

	c = New(io.Discard, LogInfo)
	c.ConfigPath = writeFile(t, "bad.toml", "[log\n")
	if got := c.ConfiguredLevel(); got != LogInfo {
		t.Errorf("ConfiguredLevel() on a broken file = %v, want info", got)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() of written config: %v", err)
	}
	if cfg.Server.Addr != config.Default().Server.Addr {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestConfigPathCommand(t *testing.T) {
	out, err := runCLI(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "config.toml") {
		t.Errorf("config path = %q", out)
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cache path = %q", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range completionShells {
		t.Run(shell, func(t *testing.T) {
			out, err := runCLI(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("%s script does not mention %s", shell, appName)
			}
		})
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func TestFlagCompletion(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"render", "--format", ""}, []string{"svg", "json", "dot"}},
		{[]string{"snapshot", "--format", ""}, []string{"svg", "json", "dot"}},
		{[]string{"render", "--mode", ""}, []string{"tree", "linear"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[:2], " "), func(t *testing.T) {
			root := New(io.Discard, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(io.Discard)
			root.SetArgs(append([]string{"__complete"}, tt.args...))
			if err := root.Execute(); err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want+"\n") {
					t.Errorf("completions %q lack %q", out.String(), want)
				}
			}
		})
	}
}
