package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// FirstPageURL builds the initial listing URL from the source's parameter
// mapping. Criteria fields without a mapped parameter name are omitted, so
// adding a source never requires code changes here.
func FirstPageURL(src jobs.SourceDescriptor, criteria jobs.SearchCriteria) (string, error) {
	base, err := url.Parse(src.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if src.SearchPath != "" {
		ref, err := url.Parse(src.SearchPath)
		if err != nil {
			return "", fmt.Errorf("parse search path: %w", err)
		}
		base = base.ResolveReference(ref)
	}

	q := base.Query()
	if p, ok := src.Params["keywords"]; ok && len(criteria.Keywords) > 0 {
		q.Set(p, strings.Join(criteria.Keywords, " "))
	}
	if p, ok := src.Params["location"]; ok && criteria.Location != "" {
		q.Set(p, criteria.Location)
	}
	if p, ok := src.Params["remote"]; ok && criteria.Remote != nil && *criteria.Remote {
		q.Set(p, "true")
	}
	switch src.Pagination.Scheme {
	case jobs.PaginateByPage:
		if src.Pagination.Param != "" {
			q.Set(src.Pagination.Param, fmt.Sprint(src.Pagination.StartPage))
		}
	case jobs.PaginateByOffset:
		if src.Pagination.Param != "" {
			q.Set(src.Pagination.Param, "0")
		}
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}
