package internal

// Page is the envelope returned by every list endpoint.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Take  int   `json:"take"`
}

// Pagination is the skip/take pair accepted by list endpoints.
type Pagination struct {
	Skip int
	Take int
}

const MaxTake = 500

// Normalize applies defaultTake when Take is unset and clamps both bounds.
func (p Pagination) Normalize(defaultTake int) Pagination {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Take <= 0 {
		p.Take = defaultTake
	}
	if p.Take > MaxTake {
		p.Take = MaxTake
	}
	return p
}

func NewPage[T any](data []T, total int64, p Pagination) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Total: total, Skip: p.Skip, Take: p.Take}
}
