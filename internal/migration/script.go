package migration

import (
	"fmt"
	"strings"
	"time"
)

// Script renders the migration artifact: forward statements under the up
// marker, rollback statements in reverse order under the down marker. The
// output runs under any SQL migration runner that understands the dbmate
// section markers, and is wrapped in the runner's transaction boundary.
func Script(ops []Operation, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "-- Identifier rename migration\n")
	fmt.Fprintf(&b, "-- Generated at %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "-- %d operations\n\n", len(ops))

	b.WriteString("-- migrate:up\n")
	for _, op := range ops {
		fmt.Fprintf(&b, "-- %s\n%s\n", op.Description, op.UpSQL)
	}

	b.WriteString("\n-- migrate:down\n")
	for i := len(ops) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "-- undo: %s\n%s\n", ops[i].Description, ops[i].DownSQL)
	}

	return b.String()
}
