package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	plain := New(CodeNotFound, "doc not found")
	assert.Equal(t, "[1004] doc not found", plain.Error())

	wrapped := Wrap(fmt.Errorf("key missing"), CodeDatabaseError, "query failed")
	assert.Equal(t, "[5001] query failed: key missing", wrapped.Error())
	assert.Equal(t, "key missing", wrapped.Unwrap().Error())
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeSQLNotSelectOnly, http.StatusForbidden},
		{CodeCommandNotAllowed, http.StatusForbidden},
		{CodeVectorDBError, http.StatusServiceUnavailable},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeLLMCallFailed, http.StatusInternalServerError},
		{ErrorCode("9999"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.code, "x").HTTPStatus, "code %s", tc.code)
	}
}

// 带码错误被 fmt.Errorf 包过一层后仍能被识别并取出。
func TestAsAppErrorUnwrapsChain(t *testing.T) {
	inner := New(CodeRetrievalFailed, "search failed")
	chained := fmt.Errorf("chat pipeline: %w", inner)

	require.True(t, IsAppError(chained))
	got := AsAppError(chained)
	assert.Equal(t, CodeRetrievalFailed, got.Code)
	assert.Equal(t, "search failed", got.Message)
}

func TestAsAppErrorFallback(t *testing.T) {
	got := AsAppError(fmt.Errorf("boom"))
	assert.Equal(t, CodeUnknown, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.False(t, IsAppError(fmt.Errorf("boom")))
}
