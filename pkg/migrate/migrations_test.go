package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestMigrationsCoverAllTables(t *testing.T) {
	expected := []string{
		"usuarios",
		"professores",
		"itens",
		"emprestimos",
		"notificacoes",
		"processos_administrativos",
	}

	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var all strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		all.Write(b)
	}

	for _, table := range expected {
		if !strings.Contains(all.String(), "CREATE TABLE "+table) {
			t.Errorf("no migration creates table %q", table)
		}
	}
}
