package http

import (
	"net/http"
	"strconv"

	"github.com/sagarc03/filegate"
)

// bindListParams reads the list query parameters. A parameter counts as
// supplied when its name appears in the query string, even with an empty value.
func bindListParams(r *http.Request) (filegate.ListParams, error) {
	query := r.URL.Query()
	var p filegate.ListParams

	if values, ok := query[filegate.ParamPageSize]; ok {
		raw := first(values)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filegate.ListParams{}, filegate.NewValidationError(
				filegate.KindInvalidType,
				[]string{"query", filegate.ParamPageSize},
				"Input should be a valid integer, unable to parse string as an integer",
				raw,
			)
		}
		p.PageSize = &n
	}

	if values, ok := query[filegate.ParamDirectory]; ok {
		dir := first(values)
		p.Directory = &dir
	}

	if values, ok := query[filegate.ParamPageToken]; ok {
		token := first(values)
		p.PageToken = &token
	}

	return p, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
