package schema_test

import (
	"errors"
	"testing"

	"github.com/sagarc03/filegate/database/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var want = schema.Table{
	"object_key": {Type: "text"},
	"size_bytes": {Type: "bigint"},
	"note":       {Type: "text", Nullable: true},
}

func TestTable_Check(t *testing.T) {
	tests := []struct {
		name           string
		actual         schema.Table
		wantMissing    []string
		wantMismatched []string
	}{
		{
			name: "exact match",
			actual: schema.Table{
				"object_key": {Type: "TEXT"},
				"size_bytes": {Type: "bigint"},
				"note":       {Type: "text", Nullable: true},
			},
		},
		{
			name: "extra columns allowed",
			actual: schema.Table{
				"object_key": {Type: "text"},
				"size_bytes": {Type: "bigint"},
				"note":       {Type: "text", Nullable: true},
				"custom":     {Type: "jsonb", Nullable: true},
			},
		},
		{
			name: "missing columns sorted",
			actual: schema.Table{
				"object_key": {Type: "text"},
			},
			wantMissing: []string{"note", "size_bytes"},
		},
		{
			name: "wrong type and nullability",
			actual: schema.Table{
				"object_key": {Type: "text", Nullable: true},
				"size_bytes": {Type: "text"},
				"note":       {Type: "text", Nullable: true},
			},
			wantMismatched: []string{
				"object_key nullable=true, want false",
				"size_bytes type text, want bigint",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := want.Check("objects", tt.actual)
			if tt.wantMissing == nil && tt.wantMismatched == nil {
				assert.NoError(t, err)
				return
			}

			var mismatch *schema.MismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "objects", mismatch.Table)
			assert.Equal(t, tt.wantMissing, mismatch.Missing)
			assert.Equal(t, tt.wantMismatched, mismatch.Mismatched)
			assert.Contains(t, err.Error(), "table objects")
		})
	}
}
