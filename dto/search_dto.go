package dto

import "strings"

const (
	DefaultSearchSize = 10
	MaxSearchSize     = 50
)

type SearchDTO struct {
	Query string `form:"q" json:"q"`
	Size  int    `form:"size" json:"size"`
}

// Validate rejects blank queries and clamps Size into [1, MaxSearchSize],
// using DefaultSearchSize when it is not positive.
func (d *SearchDTO) Validate() error {
	d.Query = strings.TrimSpace(d.Query)
	if d.Query == "" {
		return NewValidationError("q", "Query cannot be empty")
	}
	switch {
	case d.Size <= 0:
		d.Size = DefaultSearchSize
	case d.Size > MaxSearchSize:
		d.Size = MaxSearchSize
	}
	return nil
}
