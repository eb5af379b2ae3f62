package domain

// A single output column of the extraction query.
// DatabaseType is the driver-reported type name (e.g. DATE, DECIMAL), upper-cased
// and without precision, and drives value serialization.
type Column struct {
	Name         string
	DatabaseType string
}

// Represents the raw rows returned for one WorkUnit.
// Each row holds one value per column, in SELECT-list order. A ResultSet is a
// transient projection: it is serialized once and discarded.
type ResultSet struct {
	Columns []Column
	Rows    [][]any
}

func (r *ResultSet) Empty() bool { return r == nil || len(r.Rows) == 0 }

// ColumnNames returns the output column names in SELECT-list order.
func (r *ResultSet) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}
