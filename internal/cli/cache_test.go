package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/chartgeom/pkg/cache"
)

func TestDescribeCache(t *testing.T) {
	tests := []struct {
		opts cache.Options
		want string
	}{
		{cache.Options{Backend: cache.BackendFile, Dir: "/var/cache/chartgeom"}, "/var/cache/chartgeom"},
		{cache.Options{Backend: cache.BackendRedis, RedisAddr: "localhost:6379"}, "redis://localhost:6379"},
		{cache.Options{Backend: cache.BackendMongo, MongoDatabase: "charts"}, "mongodb database charts"},
		{cache.Options{Backend: cache.BackendMemory}, "memory"},
	}
	for _, tt := range tests {
		if got := describeCache(tt.opts); got != tt.want {
			t.Errorf("describeCache(%s) = %q, want %q", tt.opts.Backend, got, tt.want)
		}
	}
}

func TestCacheClearCommand(t *testing.T) {
	c := newTestCLI(t)
	in := t.TempDir()
	input := writeDataset(t, in, "pie.yaml", radialYAML)

	flags := chartFlags{output: filepath.Join(in, "pie.svg")}
	if err := c.runBatch(context.Background(), []string{input}, &flags, "", 1, false); err != nil {
		t.Fatalf("runBatch() error: %v", err)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(cfg.Cache.Dir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache dir should hold entries after a render: %v", err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"--config", c.configPath, "cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	cc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		t.Fatal(err)
	}
	n, err := cc.Clear(context.Background())
	if err != nil || n != 0 {
		t.Errorf("after clear, Clear() = %d, %v; want 0 entries", n, err)
	}
}
