package content

type DocumentSearchPayload struct {
	Term     string
	Pageable Pageable
}

type DocumentSearchMatch struct {
	Href            string `json:"href"`
	Label           string `json:"label"`
	Category        string `json:"category"`
	MatchingText    string `json:"matchingText"`
	TextBeforeMatch string `json:"textBeforeMatch"`
	TextAfterMatch  string `json:"textAfterMatch"`
}

type Page[T any] struct {
	TotalElements int      `json:"totalElements"`
	TotalPages    int      `json:"totalPages"`
	Content       []T      `json:"content"`
	Pageable      Pageable `json:"pageable"`
}

type Pageable struct {
	PageNumber int  `json:"pageNumber"`
	PageSize   int  `json:"pageSize"`
	Sort       Sort `json:"sort"`
}

type Sort struct {
	defaultDirection Direction `json:"-"`
	Orders           []Order   `json:"orders"`
}

func (s *Sort) DefaultDirection() Direction {
	return s.defaultDirection
}

func NewSort(orders []Order) Sort {
	return Sort{defaultDirection: ASC, Orders: orders}
}

type Order struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)
