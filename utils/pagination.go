package utils

import (
	"math"
	"strconv"
)

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// PageLimits is the configured default and ceiling for list endpoints.
type PageLimits struct {
	Default int
	Max     int
}

// Resolve turns raw page/limit query values into a 1-based page, a limit
// inside [1, Max], and the number of documents to skip. Page is capped so
// the skip never overflows.
func (l PageLimits) Resolve(pageStr, limitStr string) (page, limit int, skip int64) {
	page = ParseIntDefault(pageStr, 1)
	limit = ParseIntDefault(limitStr, l.Default)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = l.Default
	}
	if limit > l.Max {
		limit = l.Max
	}
	if maxPage := math.MaxInt64/int64(limit) + 1; int64(page) > maxPage {
		page = int(maxPage)
	}
	skip = int64(page-1) * int64(limit)
	return page, limit, skip
}
