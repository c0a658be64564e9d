package pagination

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const fallbackLimit = 20

// Defaults describes how one listing pages and sorts
type Defaults struct {
	Limit    int
	MaxLimit int
	// Sort is the default sort key; a leading "-" means descending
	Sort string
	// Sortable maps public sort keys to columns
	Sortable map[string]string
}

// Listings exposed by the API
var (
	// Members pages the roster alphabetically; a congregation fits in a few pages
	Members = Defaults{
		Limit:    50,
		MaxLimit: 200,
		Sort:     "name",
		Sortable: map[string]string{
			"name":        "name",
			"joinDate":    "join_date",
			"missed":      "consecutive_months_missed",
			"lastPayment": "last_payment_date",
		},
	}

	// Payments pages the ledger newest first
	Payments = Defaults{
		Limit:    25,
		MaxLimit: 100,
		Sort:     "-paymentDate",
		Sortable: map[string]string{
			"paymentDate": "payment_date",
			"period":      "period",
			"amount":      "amount",
		},
	}

	Users = Defaults{Limit: 20, MaxLimit: 100}
)

// Params represents pagination parameters
type Params struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Sort   string `json:"sort,omitempty"`
	Offset int    `json:"-"`
	// OrderBy is built only from Sortable columns
	OrderBy string `json:"-"`
}

// Meta represents pagination metadata
type Meta struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Sort       string `json:"sort,omitempty"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"totalPages"`
	HasNext    bool   `json:"hasNext"`
	HasPrev    bool   `json:"hasPrev"`
}

// Parse reads page, limit and sort from the query string
func Parse(c *fiber.Ctx, d Defaults) *Params {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return d.Params(page, limit, c.Query("sort"))
}

// Params clamps page and limit and resolves sort. Unknown sort keys fall
// back to the listing's default.
func (d Defaults) Params(page, limit int, sort string) *Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = d.Limit
	}
	if limit < 1 {
		limit = fallbackLimit
	}
	if d.MaxLimit > 0 && limit > d.MaxLimit {
		limit = d.MaxLimit
	}

	p := &Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
	if key, orderBy, ok := d.order(sort); ok {
		p.Sort, p.OrderBy = key, orderBy
	} else if key, orderBy, ok := d.order(d.Sort); ok {
		p.Sort, p.OrderBy = key, orderBy
	}
	return p
}

func (d Defaults) order(sort string) (string, string, bool) {
	sort = strings.TrimSpace(sort)
	key, desc := strings.TrimPrefix(sort, "-"), strings.HasPrefix(sort, "-")
	column, ok := d.Sortable[key]
	if !ok {
		return "", "", false
	}
	if desc {
		return sort, column + " DESC", true
	}
	return sort, column + " ASC", true
}

// GetMeta calculates pagination metadata
func GetMeta(params *Params, total int64) *Meta {
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return &Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Sort:       params.Sort,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Response represents paginated response
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse creates a new paginated response
func NewResponse(data interface{}, params *Params, total int64) *Response {
	return &Response{
		Data: data,
		Meta: GetMeta(params, total),
	}
}
