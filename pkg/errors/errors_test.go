package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, MetadataFor(CodeStaleVersion).HTTPStatus)
	assert.True(t, MetadataFor(CodeStaleVersion).Retryable)
	assert.Equal(t, http.StatusForbidden, MetadataFor(CodeRoleDenied).HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeTerminal).HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, MetadataFor(CodeUnknownStatus).HTTPStatus)
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "load booking")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDependency, err.Code())
	assert.Equal(t, "DEPENDENCY_ERROR: load booking", err.Error())
}

func TestAsUnwrapsNestedTypedError(t *testing.T) {
	inner := New(CodeEvidence, "picture required")
	wrapped := fmt.Errorf("apply transition: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeEvidence, typed.Code())
	assert.True(t, HasCode(wrapped, CodeEvidence))
	assert.False(t, HasCode(wrapped, CodeTerminal))
}

func TestAsReturnsNilForUntypedError(t *testing.T) {
	assert.Nil(t, As(stdErrors.New("plain")))
	assert.Nil(t, As(nil))
}
