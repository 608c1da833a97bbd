package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cydxin/mokjang-sdk/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, CodeSuccess},
		{fmt.Errorf("%w: name", service.ErrInvalidArgument), CodeParamError},
		{service.ErrUnauthenticated, CodeTokenInvalid},
		{service.ErrPermissionDenied, CodePermissionDeny},
		{fmt.Errorf("%w: group", service.ErrNotFound), CodeNotFound},
		{service.ErrConflict, CodeConflict},
		{service.ErrAlreadyProcessed, CodeAlreadyProcessed},
		{errors.New("db down"), CodeInternalError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, CodeOf(tc.err), "%v", tc.err)
	}
}

func TestWriteJSONWithStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(service.ErrPermissionDenied).WriteJSONWithStatus(rec, http.StatusForbidden)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, CodePermissionDeny, got.Code)
	assert.Equal(t, "permission denied", got.Msg)
}
