// Package schema compares the columns of an index table against the layout
// filegate migrates. Drivers read their own catalog and hand the result here.
package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrTableMissing is returned when the table is absent from the catalog.
var ErrTableMissing = errors.New("table does not exist")

// Column describes one column as the database reports it. Type is compared
// case-insensitively.
type Column struct {
	Type     string
	Nullable bool
}

// Table maps column names to their description.
type Table map[string]Column

// MismatchError lists every difference found by Check.
type MismatchError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s does not match the expected schema", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatched, "; "))
	}
	return b.String()
}

// Check reports whether actual contains every column of want with the same type
// and nullability. Extra columns in actual are allowed.
func (want Table) Check(table string, actual Table) error {
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	slices.Sort(names)

	mismatch := &MismatchError{Table: table}
	for _, name := range names {
		exp := want[name]
		got, ok := actual[name]
		if !ok {
			mismatch.Missing = append(mismatch.Missing, name)
			continue
		}
		if !strings.EqualFold(got.Type, exp.Type) {
			mismatch.Mismatched = append(mismatch.Mismatched,
				fmt.Sprintf("%s type %s, want %s", name, strings.ToLower(got.Type), exp.Type))
		}
		if got.Nullable != exp.Nullable {
			mismatch.Mismatched = append(mismatch.Mismatched,
				fmt.Sprintf("%s nullable=%t, want %t", name, got.Nullable, exp.Nullable))
		}
	}

	if len(mismatch.Missing) == 0 && len(mismatch.Mismatched) == 0 {
		return nil
	}
	return mismatch
}
