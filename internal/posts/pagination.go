package posts

import (
	"strconv"

	"github.com/ayush/blog-app/backend/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ParsePositive parses a query value, returning def for empty, malformed or
// non-positive input.
func ParsePositive(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// normalizePage applies defaults and caps limit at maxLimit (0 means no cap).
func normalizePage(page, limit, maxLimit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Paginate computes the page metadata for total matching posts.
func Paginate(page, limit int, total int64) models.Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return models.Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}
