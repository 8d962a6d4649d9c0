// Package pagination normalizes page-number pagination for list endpoints.
package pagination

// Page describes one 1-indexed page over a list of Total items.
type Page struct {
	Number     int
	Size       int
	Total      int
	TotalPages int
}

// NumberedPage resolves a requested page number against total items.
// Page numbers below 1 select the first page. An empty list still has one
// (empty) page.
func NumberedPage(number, size, total int) Page {
	if size <= 0 {
		size = 1
	}
	if number < 1 {
		number = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	return Page{Number: number, Size: size, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open index range of the page, clipped to Total.
// A page past the end yields an empty range whatever its number.
func (p Page) Bounds() (int, int) {
	if p.Size <= 0 || p.Total <= 0 || p.Number < 1 {
		return 0, 0
	}
	// Compare page indexes before multiplying so huge numbers cannot overflow.
	if p.Number-1 >= (p.Total+p.Size-1)/p.Size {
		return p.Total, p.Total
	}
	start := (p.Number - 1) * p.Size
	return start, min(start+p.Size, p.Total)
}
