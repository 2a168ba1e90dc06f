package cli

import (
	"io"
	"testing"

	"github.com/matzehuels/streettype/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	defer func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = "dev", "none", "unknown" }()

	SetVersion("1.0.0", "abc123", "2026-01-01")
	if buildinfo.Version != "1.0.0" || buildinfo.Commit != "abc123" || buildinfo.Date != "2026-01-01" {
		t.Errorf("SetVersion did not update buildinfo: %s", buildinfo.String())
	}

	SetVersion("", "", "")
	if buildinfo.Version != "1.0.0" {
		t.Errorf("empty SetVersion should keep the version, got %q", buildinfo.Version)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	for _, name := range []string{"render", "compose", "variants", "path", "serve", "cache", "completion"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root should have a --config flag")
	}
}
