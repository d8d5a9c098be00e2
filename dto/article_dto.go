package dto

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPolicy = bluemonday.UGCPolicy()
	markup     = regexp.MustCompile(`<[a-zA-Z/!?]`)
)

// sanitizeBody strips markup that is unsafe to render back to readers.
// Bodies without tags are plain text and are only trimmed.
func sanitizeBody(s string) string {
	if !markup.MatchString(s) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(bodyPolicy.Sanitize(s))
}

type CreateArticleDTO struct {
	Product string `json:"product" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// Validate trims every field before checking it, so whitespace-only values
// are rejected as empty.
func (d *CreateArticleDTO) Validate() error {
	d.Product = strings.TrimSpace(d.Product)
	d.Subject = strings.TrimSpace(d.Subject)
	d.Body = sanitizeBody(d.Body)
	d.Date = strings.TrimSpace(d.Date)
	return checkStruct(d).OrNil()
}

// UpdateArticleDTO is a partial update; nil means "leave unchanged".
type UpdateArticleDTO struct {
	Product *string `json:"product,omitempty"`
	Subject *string `json:"subject,omitempty"`
	Body    *string `json:"body,omitempty"`
	Date    *string `json:"date,omitempty"`
}

func (d *UpdateArticleDTO) Validate() error {
	if d.Product == nil && d.Subject == nil && d.Body == nil && d.Date == nil {
		return NewValidationError("payload", "At least one field must be provided for an update")
	}
	errs := &ValidationError{}
	d.Product = trimPtr(d.Product)
	d.Subject = trimPtr(d.Subject)
	d.Date = trimPtr(d.Date)
	if d.Body != nil {
		b := sanitizeBody(*d.Body)
		d.Body = &b
	}
	for field, p := range map[string]*string{"product": d.Product, "subject": d.Subject, "body": d.Body} {
		if p != nil && *p == "" {
			errs.Add(field, "Cannot be empty")
		}
	}
	if d.Date != nil {
		if _, err := ParseDate(*d.Date); err != nil {
			errs.Add("date", "Invalid date format")
		}
	}
	return errs.OrNil()
}
