package database

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// The repositories bind sql.NullString for an absent password hash, so a
// Google-only account inserts NULL. The schema must keep the column nullable
// or every federated account creation fails with a not-null violation.
func TestUsersSchema_AllowsPasswordlessAccounts(t *testing.T) {
	t.Parallel()

	ddl := readMigration(t, "001_create_users.sql")

	for _, column := range []string{"password_hash", "google_id"} {
		decl := columnDecl(t, ddl, column)
		if strings.Contains(strings.ToUpper(decl), "NOT NULL") {
			t.Errorf("Column %s must be nullable, got declaration %q", column, decl)
		}
	}
}

func TestUsersSchema_ConstraintNamesMatchSentinelMapping(t *testing.T) {
	t.Parallel()

	ddl := readMigration(t, "001_create_users.sql")

	// Postgres derives <table>_<column>_key for inline UNIQUE columns; the
	// repository maps those names to the duplicate sentinels.
	for column, constraint := range map[string]string{
		"email":     "users_email_key",
		"google_id": "users_google_id_key",
	} {
		decl := columnDecl(t, ddl, column)
		if !strings.Contains(strings.ToUpper(decl), "UNIQUE") {
			t.Errorf("Column %s must carry an inline UNIQUE for constraint %s, got %q",
				column, constraint, decl)
		}
	}
}

func readMigration(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "migrations", name))
	if err != nil {
		t.Fatalf("failed to read migration %s: %v", name, err)
	}
	return string(data)
}

func columnDecl(t *testing.T, ddl, column string) string {
	t.Helper()

	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(column) + `\s+[^,\n]*`)
	decl := re.FindString(ddl)
	if decl == "" {
		t.Fatalf("Column %s not found in migration", column)
	}
	return decl
}
