package database

import (
	"strings"
	"testing"
)

func TestMigrationsOnlyTouchData(t *testing.T) {
	if len(migrations) != 1 || migrations[0] != seedPointsFromDocuments {
		t.Fatalf("expected only the points seed migration, got %d", len(migrations))
	}
	for _, m := range migrations {
		if strings.Contains(strings.ToUpper(m), "ALTER TABLE") {
			t.Fatalf("schema changes belong in createTables: %s", m)
		}
	}
	if !strings.Contains(seedPointsFromDocuments, "ON CONFLICT (member_id) DO NOTHING") {
		t.Fatalf("seed must not overwrite existing balances")
	}
}
