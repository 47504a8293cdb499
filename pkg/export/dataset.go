package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	// Summary lines are rendered after the table as label/value pairs.
	Summary []SummaryLine
}

// SummaryLine is one label/value pair printed below the table.
type SummaryLine struct {
	Label string
	Value string
}

func (d Dataset) record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
