package database

import "fmt"

// TenantTables lists every table carrying a tenant_id column. Row level
// security policies are installed on each of them.
var TenantTables = []string{
	"users",
	"documents",
	"document_chunks",
	"chat_sessions",
	"chat_messages",
	"feedback",
	"audit_events",
}

// TenantIsolationStatements returns the DDL that installs row level
// security on the given tables. Each policy matches rows against the
// app.tenant_id session setting; a session that never sets it sees no
// rows at all. The statements are idempotent so migrations can re-run.
func TenantIsolationStatements(tables ...string) []string {
	out := make([]string, 0, len(tables)*3)
	for _, table := range tables {
		out = append(out,
			fmt.Sprintf(`ALTER TABLE %s ENABLE ROW LEVEL SECURITY;`, table),
			fmt.Sprintf(`DROP POLICY IF EXISTS %s_tenant_isolation ON %s;`, table, table),
			fmt.Sprintf(`CREATE POLICY %s_tenant_isolation ON %s FOR ALL
 USING (tenant_id = current_setting('app.tenant_id', true)::uuid)
 WITH CHECK (tenant_id = current_setting('app.tenant_id', true)::uuid);`, table, table),
		)
	}
	return out
}
