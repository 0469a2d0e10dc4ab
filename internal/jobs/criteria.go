package jobs

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DateWindow bounds how old a posting may be to match the criteria.
type DateWindow string

// Supported posting-age windows.
const (
	DateToday DateWindow = "today"
	DateWeek  DateWindow = "week"
	DateMonth DateWindow = "month"
	DateAny   DateWindow = "any"
)

// DefaultMaxResults caps a run when the caller does not ask for a limit.
const DefaultMaxResults = 50

// MaxResultsCeiling is the hard upper bound on requested results.
const MaxResultsCeiling = 1000

// SearchCriteria describes one ingestion request across sources.
type SearchCriteria struct {
	Keywords        []string         `json:"keywords" validate:"required,min=1,dive,required"`
	Location        string           `json:"location,omitempty"`
	Remote          *bool            `json:"remote,omitempty"`
	SalaryMin       float64          `json:"salaryMin,omitempty" validate:"gte=0"`
	SalaryMax       float64          `json:"salaryMax,omitempty" validate:"gte=0"`
	EmploymentTypes []EmploymentType `json:"employmentTypes,omitempty" validate:"dive,oneof=full-time part-time contract temporary internship freelance"`
	ExcludeKeywords []string         `json:"excludeKeywords,omitempty"`
	DatePosted      DateWindow       `json:"datePosted,omitempty" validate:"omitempty,oneof=today week month any"`
	MaxResults      int              `json:"maxResults,omitempty" validate:"gte=0,lte=1000"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// WithDefaults returns a copy with zero values replaced by documented
// defaults: empty exclude list, DateAny window, MaxResults 50.
func (c SearchCriteria) WithDefaults() SearchCriteria {
	if c.ExcludeKeywords == nil {
		c.ExcludeKeywords = []string{}
	}
	if c.DatePosted == "" {
		c.DatePosted = DateAny
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
	return c
}

// Validate rejects criteria before any network activity takes place.
func (c SearchCriteria) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid search criteria: %w", err)
	}
	if c.SalaryMin > 0 && c.SalaryMax > 0 && c.SalaryMin > c.SalaryMax {
		return fmt.Errorf("invalid search criteria: salaryMin %v exceeds salaryMax %v", c.SalaryMin, c.SalaryMax)
	}
	return nil
}
