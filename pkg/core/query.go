package core

// CompiledQuery is the result of executing builder source: a SQL template
// with dialect-style placeholders and the ordered parameter values bound to
// them. It is ephemeral, produced per run and never persisted, and is only
// meaningful together with the dialect that produced it.
type CompiledQuery struct {
	// SQL is the query template, placeholders included.
	SQL string

	// Parameters holds the bound values in placeholder order.
	Parameters []any

	// Dialect names the dialect the template was compiled for.
	Dialect string
}
