package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var problem ProblemDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&problem))
	return problem
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("order 9: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("limit: %w", ErrValidation), http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		assert.Equal(t, problemContentType, rr.Header().Get("Content-Type"))
		assert.Equal(t, tc.status, decodeProblem(t, rr).Status)
	}
}

func TestInternalErrorsHideDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("pg: password authentication failed"))
	assert.Empty(t, decodeProblem(t, rr).Detail)
}

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]string{"status": "ok"})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
