package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	if !sort.StringsAreSorted(files) {
		t.Fatalf("migrations not sorted: %v", files)
	}
	want := []string{"001_ledger.sql", "002_settings.sql"}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("migrations = %v, want %v", files, want)
	}
}
