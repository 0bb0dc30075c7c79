package search

import "leadscout-engine/internal/domain"

type PageRow struct {
	Row int `json:"row"` // 1-based position in the full result list
	domain.Candidate
}

type PageView struct {
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	PageSize int       `json:"page_size"`
	Total    int       `json:"total"`
	Rows     []PageRow `json:"rows"`
}

// Paginate derives the 1-based page window purely from the list length.
// Out-of-range pages clamp to the nearest valid page.
func Paginate(total, size, page int) (pages, start, end int) {
	if size <= 0 {
		size = 20
	}
	pages = (total + size - 1) / size
	if pages == 0 {
		return 0, 0, 0
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start = (page - 1) * size
	end = start + size
	if end > total {
		end = total
	}
	return pages, start, end
}

// Page returns one page of the published results.
func (s *Session) Page(page, size int) PageView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if size <= 0 {
		size = 20
	}
	total := len(s.results)
	pages, start, end := Paginate(total, size, page)

	view := PageView{
		Pages:    pages,
		PageSize: size,
		Total:    total,
	}
	if pages == 0 {
		view.Page = 1
		return view
	}
	view.Page = start/size + 1

	view.Rows = make([]PageRow, 0, end-start)
	for i := start; i < end; i++ {
		view.Rows = append(view.Rows, PageRow{Row: i + 1, Candidate: s.results[i]})
	}
	return view
}
