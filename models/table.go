package models

// Table is a read-only snapshot of a café table.
type Table struct {
	ID        string
	Number    string
	Available bool
}
