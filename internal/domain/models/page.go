package models

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Results    []T `json:"results"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
}

// Paginate cuts items into pages of size and returns page number (1-based).
// Out of range page numbers are clamped to the nearest valid page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = len(items)
		if size == 0 {
			size = 1
		}
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	results := make([]T, end-start)
	copy(results, items[start:end])

	return Page[T]{
		Results:    results,
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		TotalCount: total,
	}
}
