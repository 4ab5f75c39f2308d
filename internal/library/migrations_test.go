package library

import "testing"

func TestMigrationVersionParsing(t *testing.T) {
	version, err := migrationVersion("0001_init.sql")
	if err != nil || version != 1 {
		t.Fatalf("migrationVersion(0001_init.sql) = %d, %v", version, err)
	}

	for _, name := range []string{"init.sql", "0001_init.txt", "abcd_init.sql", "0000_init.sql"} {
		if _, err := migrationVersion(name); err == nil {
			t.Errorf("migrationVersion(%q): expected error", name)
		}
	}
}

func TestLoadMigrationsAscending(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if migrations[0].version != 1 {
		t.Fatalf("first migration version = %d, want 1", migrations[0].version)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].version <= migrations[i-1].version {
			t.Fatalf("migrations out of order: %s before %s",
				migrations[i-1].name, migrations[i].name)
		}
	}
}
