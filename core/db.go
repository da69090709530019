package core

// DBOrdering is a single ORDER BY term bound from the `ordering` query param.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is a page/limit cursor over a list query.
type Pagination struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Clean applies the default page size and caps the limit.
func (p *Pagination) Clean() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	} else if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
