package filegate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sagarc03/filegate"
	"github.com/stretchr/testify/assert"
)

func TestUpstream(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, filegate.Upstream("op", nil))
	})

	t.Run("wraps plain errors", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := filegate.Upstream("head object", cause)

		assert.ErrorIs(t, err, filegate.ErrUpstream)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "head object: connection refused", err.Error())

		var uerr *filegate.UpstreamError
		assert.ErrorAs(t, err, &uerr)
		assert.Equal(t, "head object", uerr.Op)
	})

	t.Run("keeps not found", func(t *testing.T) {
		err := filegate.Upstream("head object", fmt.Errorf("key a: %w", filegate.ErrNotFound))
		assert.ErrorIs(t, err, filegate.ErrNotFound)
		assert.NotErrorIs(t, err, filegate.ErrUpstream)
	})

	t.Run("keeps validation errors", func(t *testing.T) {
		verr := filegate.NewValidationError(filegate.KindInvalidValue, []string{"query"}, "bad", nil)
		err := filegate.Upstream("list", verr)
		assert.Same(t, verr, err)
	})

	t.Run("does not double wrap", func(t *testing.T) {
		first := filegate.Upstream("inner", errors.New("x"))
		assert.Same(t, first, filegate.Upstream("outer", first))
	})

	t.Run("context errors are upstream", func(t *testing.T) {
		err := filegate.Upstream("list", context.DeadlineExceeded)
		assert.ErrorIs(t, err, filegate.ErrUpstream)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestValidationError(t *testing.T) {
	err := &filegate.ValidationError{Errors: []filegate.FieldError{
		{Kind: filegate.KindOutOfRange, Loc: []string{"query", "page_size"}, Msg: "too big"},
		{Kind: filegate.KindMissing, Loc: []string{"body", "file"}, Msg: "Field required"},
	}}

	assert.ErrorIs(t, err, filegate.ErrInvalidInput)
	assert.NotErrorIs(t, err, filegate.ErrNotFound)
	assert.Equal(t, "validation failed: query.page_size: too big; body.file: Field required", err.Error())
}
