package export

// Dataset defines tabular export content. Rows are keyed by header so
// exporters can render columns in header order without positional coupling.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Empty reports whether the dataset has no rows.
func (d Dataset) Empty() bool {
	return len(d.Rows) == 0
}
