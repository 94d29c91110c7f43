package domain

// ExtractedTable is a table as read from a source page: rows of cell texts, header first.
type ExtractedTable [][]string

// ExtractedPage is the raw content of one source page.
type ExtractedPage struct {
	Number int
	Lines  []string
	Tables []ExtractedTable
}
