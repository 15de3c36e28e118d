package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithParam(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks/"+value, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  int64
		expectErr bool
	}{
		{name: "valid", value: "12", expected: 12},
		{name: "large", value: "9223372036854775807", expected: 9223372036854775807},
		{name: "not a number", value: "abc", expectErr: true},
		{name: "float", value: "1.5", expectErr: true},
		{name: "missing", value: "", expectErr: true},
		{name: "overflow", value: "9223372036854775808", expectErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := getPathID(requestWithParam(taskIDParam, tc.value), taskIDParam)

			if tc.expectErr {
				require.Error(t, err)
				assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
				assert.Equal(t, "Expected number, but received string", domain.DetailOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestGetPagination(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedSkip  int
		expectedLimit int
		expectedKind  *domain.Kind
	}{
		{name: "defaults", query: "", expectedSkip: 0, expectedLimit: 100},
		{name: "explicit", query: "skip=10&limit=5", expectedSkip: 10, expectedLimit: 5},
		{name: "lower bound", query: "limit=1", expectedSkip: 0, expectedLimit: 1},
		{name: "bad skip", query: "skip=x", expectedKind: kindPtr(domain.KindBadRequest)},
		{name: "bad limit", query: "limit=2.5", expectedKind: kindPtr(domain.KindBadRequest)},
		{name: "negative skip", query: "skip=-5", expectedKind: kindPtr(domain.KindUnprocessableEntity)},
		{name: "limit over max", query: "limit=1000", expectedKind: kindPtr(domain.KindUnprocessableEntity)},
		{name: "negative limit", query: "limit=-1", expectedKind: kindPtr(domain.KindUnprocessableEntity)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/tasks/?"+tc.query, nil)

			skip, limit, err := getPagination(req)

			if tc.expectedKind != nil {
				require.Error(t, err)
				assert.Equal(t, *tc.expectedKind, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedSkip, skip)
			assert.Equal(t, tc.expectedLimit, limit)
		})
	}
}

func TestGetSession(t *testing.T) {
	s := newTestSession(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks/", nil)

	_, err := getSession(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNoSession)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	got, err := getSession(req.WithContext(store.WithSession(req.Context(), s)))
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func kindPtr(k domain.Kind) *domain.Kind { return &k }
