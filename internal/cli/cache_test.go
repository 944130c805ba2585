package cli

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/critpath/pkg/cache"
)

func TestCountEntries(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"preview:a", "preview:b", "preview:c"} {
		if err := fc.Set(ctx, key, []byte("{}"), time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	n, err := countEntries(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("countEntries() = %d, want 3", n)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := isolate(t)
	cacheDir, err := cache.DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cacheDir, dir) {
		t.Fatalf("cache dir %s escapes test home %s", cacheDir, dir)
	}

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "preview:site-7", []byte("{}"), time.Minute); err != nil {
		t.Fatal(err)
	}

	if err := execute(context.Background(), []string{"cache", "clear"}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache not cleared: %d entries left", len(entries))
	}
}
