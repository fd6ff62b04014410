package pagination

// DefaultPageSize is the number of expenses shown per list page.
const DefaultPageSize = 10

// Page addresses one page of an offset-paginated listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage normalises a requested page: numbers below 1 become 1 and a
// non-positive size falls back to DefaultPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows to skip before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of rows on this page.
func (p Page) Limit() int {
	return p.Size
}

// PageCount returns how many pages of the given size are needed for total rows.
// An empty listing still has one (empty) page.
func PageCount(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Clamp moves p onto the last page when it points past the end of a listing of total rows.
func (p Page) Clamp(total int) Page {
	last := PageCount(total, p.Size)
	if p.Number > last {
		p.Number = last
	}
	return p
}
