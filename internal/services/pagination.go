package services

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageRequest is embedded by list requests.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (p *PageRequest) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

func (p *PageRequest) offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListResponse is the paginated payload shared by every list endpoint.
type ListResponse[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Items    []T   `json:"items"`
}

func newList[T any](items []T, total int64, p PageRequest) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResponse[T]{Total: total, Page: p.Page, PageSize: p.PageSize, Items: items}
}
