package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/taxotree/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxotree.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Report.TaxColumn != 14 || c.Report.ScoreColumn != 12 {
		t.Errorf("report = %+v", c.Report)
	}
	if c.Fetch.MaxBatch != 500 {
		t.Errorf("max_batch = %d, want 500", c.Fetch.MaxBatch)
	}
	if c.Cache.TTL != 30*24*time.Hour {
		t.Errorf("ttl = %v", c.Cache.TTL)
	}
	if c.File != "" {
		t.Errorf("File = %q, want none", c.File)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[report]
tax_column = 16

[tree]
rank_tracking = true
delta_percent = 5

[stores]
organism = "/data/organisms.kv"
[stores.accession]
silva = "redis://localhost:6379/1"

[cache]
ttl = "2h"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Report.TaxColumn != 16 || c.Report.ScoreColumn != 12 {
		t.Errorf("report = %+v", c.Report)
	}
	if !c.Tree.RankTracking || c.Tree.DeltaPercent != 5 {
		t.Errorf("tree = %+v", c.Tree)
	}
	if c.Stores.Organism != "/data/organisms.kv" || c.Stores.Accession["silva"] != "redis://localhost:6379/1" {
		t.Errorf("stores = %+v", c.Stores)
	}
	if c.Cache.TTL != 2*time.Hour {
		t.Errorf("ttl = %v", c.Cache.TTL)
	}
	if c.File != path {
		t.Errorf("File = %q, want %q", c.File, path)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[tree]\ndelta_percent = 5\n")
	t.Setenv("TAXOTREE_TREE_DELTA_PERCENT", "12")
	t.Setenv("TAXOTREE_TREE_IDENTICAL_READS", "true")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Tree.DeltaPercent != 12 || !c.Tree.IdenticalReads {
		t.Errorf("tree = %+v", c.Tree)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"bad column", "[report]\ntax_column = 0\n", errors.ErrCodeInvalidColumn},
		{"bad delta", "[tree]\ndelta_percent = -3\n", errors.ErrCodeInvalidDelta},
		{"bad batch", "[fetch]\nmax_batch = 0\n", errors.ErrCodeInvalidInput},
		{"bad url", "[fetch]\nurl = \"ftp://x\"\n", errors.ErrCodeInvalidInput},
		{"bad toml", "[tree\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestCacheDir(t *testing.T) {
	c := &Config{Cache: CacheConfig{Dir: "/tmp/x"}}
	if d, _ := c.CacheDir(); d != "/tmp/x" {
		t.Errorf("CacheDir = %q", d)
	}
	t.Setenv("XDG_CACHE_HOME", "/xdg")
	c.Cache.Dir = ""
	if d, _ := c.CacheDir(); d != filepath.Join("/xdg", "taxotree") {
		t.Errorf("CacheDir = %q", d)
	}
}
