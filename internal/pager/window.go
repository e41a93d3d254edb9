package pager

// Page is one page of a paginated backend listing, copied verbatim from the
// response.
type Page[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// Window is the set of page links a pagination bar shows.
type Window struct {
	Pages            []int `json:"pages"`
	Current          int   `json:"current"`
	First            int   `json:"first,omitempty"`
	Last             int   `json:"last,omitempty"`
	LeadingEllipsis  bool  `json:"leadingEllipsis"`
	TrailingEllipsis bool  `json:"trailingEllipsis"`
}

// NewWindow centres up to size page links on current, shifting the window
// left when it would run past the last page. First and Last are set when the
// first or last page falls outside the window. A zero total yields an empty
// window.
func NewWindow(current, total, size int) Window {
	w := Window{Pages: []int{}, Current: current}
	if total <= 0 || size <= 0 {
		return w
	}

	start := max(1, current-size/2)
	end := min(total, start+size-1)
	if end-start+1 < size {
		start = max(1, end-size+1)
	}

	for p := start; p <= end; p++ {
		w.Pages = append(w.Pages, p)
	}

	if start > 1 {
		w.First = 1
		w.LeadingEllipsis = start > 2
	}
	if end < total {
		w.Last = total
		w.TrailingEllipsis = end < total-1
	}
	return w
}
