package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestInitConfig_EnvOverridesDottedKeys(t *testing.T) {
	// Point at a nonexistent explicit config file so initConfig neither reads
	// nor bootstraps anything under the real home directory.
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	defer func() { cfgFile = "" }()

	t.Setenv("UPSTREAM_URL", "https://env.example.com/api")

	initConfig()

	if got := viper.GetString("upstream.url"); got != "https://env.example.com/api" {
		t.Fatalf("expected env var to override upstream.url, got %q", got)
	}
}

func TestStatsCmd_MissingDatabase(t *testing.T) {
	viper.Set("data.dir", t.TempDir())
	defer viper.Set("data.dir", "")

	err := statsCmd.RunE(statsCmd, nil)
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
	if !strings.Contains(err.Error(), "database not found") {
		t.Fatalf("expected a database-not-found error, got: %v", err)
	}
}

func TestChangesCmd_MissingDatabase(t *testing.T) {
	viper.Set("data.dir", t.TempDir())
	defer viper.Set("data.dir", "")

	err := changesCmd.RunE(changesCmd, nil)
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
	if !strings.Contains(err.Error(), "database not found") {
		t.Fatalf("expected a database-not-found error, got: %v", err)
	}
}
