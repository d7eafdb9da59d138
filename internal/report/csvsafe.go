package report

// EscapeCSVCell neutralizes spreadsheet formula injection. A cell whose
// first byte is a formula trigger or control character gets a leading
// single quote so Excel and Sheets read it as text. Card names and notes
// are user input, so every exported cell goes through here.
func EscapeCSVCell(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '|', '%', '\t', '\r', '\n':
		return "'" + value
	}
	return value
}

// EscapeCSVRow escapes every cell in a row.
func EscapeCSVRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = EscapeCSVCell(cell)
	}
	return escaped
}
