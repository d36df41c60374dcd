package excel

// Format is a supported upload file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Table is a parsed file before type inference: a header row and one raw
// record per data row, keyed by header
type Table struct {
	Name    string
	Format  Format
	Headers []string
	Records []map[string]interface{}
}
