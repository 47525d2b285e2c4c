package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildError_ErrorString(t *testing.T) {
	e := New(CategoryTransform, SeverityError, "malformed markdown")
	assert.Equal(t, "transform (error): malformed markdown", e.Error())

	wrapped := Wrap(fmt.Errorf("unexpected EOF"), CategoryFileSystem, SeverityError, "read source")
	assert.Contains(t, wrapped.Error(), "filesystem (error): read source")
	assert.Contains(t, wrapped.Error(), "unexpected EOF")
}

func TestBuildError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	e := Wrap(cause, CategoryFileSystem, SeverityError, "write dest")
	require.ErrorIs(t, e, cause)
	assert.Equal(t, cause, stderrors.Unwrap(e))
}

func TestCategoryHelpers(t *testing.T) {
	e := ConfigError("duplicate task name: clean")
	assert.True(t, IsCategory(e, CategoryConfig))
	assert.False(t, IsCategory(e, CategoryTask))
	assert.Equal(t, SeverityFatal, e.Severity)

	assert.Equal(t, CategoryConfig, GetCategory(e))
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}

func TestWithContext(t *testing.T) {
	e := ValidationError("glob must not be empty").WithContext("binding", 2)
	assert.Equal(t, 2, e.Context["binding"])
}
