package filegate

import (
	"fmt"
	"strings"
)

// Query parameter names as they appear on the wire.
const (
	ParamPageSize  = "page_size"
	ParamDirectory = "directory"
	ParamPageToken = "page_token"
)

// NewListQuery validates p against bounds and returns the normalized query.
//
// Range errors on page_size are reported first. A page_token supplied together
// with page_size or directory is rejected even when their values equal the
// defaults: presence, not value, decides. An empty page_token counts as absent.
func NewListQuery(p ListParams, bounds PageSizeBounds) (ListQuery, error) {
	if p.PageSize != nil {
		if fe, ok := checkPageSize(*p.PageSize, bounds); !ok {
			return ListQuery{}, &ValidationError{Errors: []FieldError{fe}}
		}
	}

	token := ""
	if p.PageToken != nil {
		token = *p.PageToken
	}

	if token != "" {
		var conflicts []string
		input := map[string]any{ParamPageToken: token}
		if p.PageSize != nil {
			conflicts = append(conflicts, ParamPageSize)
			input[ParamPageSize] = *p.PageSize
		}
		if p.Directory != nil {
			conflicts = append(conflicts, ParamDirectory)
			input[ParamDirectory] = *p.Directory
		}
		if len(conflicts) > 0 {
			return ListQuery{}, NewValidationError(
				KindMutuallyExclusive,
				[]string{"query"},
				fmt.Sprintf("%s cannot be combined with %s", ParamPageToken, strings.Join(conflicts, ", ")),
				input,
			)
		}
		return ListQuery{ContinuationCursor: token}, nil
	}

	q := ListQuery{PageSize: bounds.Default}
	if p.PageSize != nil {
		q.PageSize = *p.PageSize
	}
	if p.Directory != nil {
		q.DirectoryPrefix = *p.Directory
	}
	return q, nil
}

func checkPageSize(n int, bounds PageSizeBounds) (FieldError, bool) {
	loc := []string{"query", ParamPageSize}
	switch {
	case n < bounds.Min:
		return FieldError{
			Kind:  KindOutOfRange,
			Loc:   loc,
			Msg:   fmt.Sprintf("Input should be greater than or equal to %d", bounds.Min),
			Input: n,
		}, false
	case n > bounds.Max:
		return FieldError{
			Kind:  KindOutOfRange,
			Loc:   loc,
			Msg:   fmt.Sprintf("Input should be less than or equal to %d", bounds.Max),
			Input: n,
		}, false
	}
	return FieldError{}, true
}
