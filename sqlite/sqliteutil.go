package sqlite

import "strings"

// Scannable is satisfied by both *sql.Row and *sql.Rows.
type Scannable interface {
	Scan(dest ...any) error
}

// generateParameters renders an "(?, ?, ...)" placeholder group for n args.
func generateParameters(n int) string {
	var sb strings.Builder
	sb.WriteString("(")
	for i := range n {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
	}
	sb.WriteString(")")
	return sb.String()
}
