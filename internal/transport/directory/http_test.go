package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familycal/internal/appers"
	"familycal/pkg/config"
	"familycal/pkg/httpclient"
	"familycal/pkg/metrics"
)

func newDirectory(t *testing.T, h http.HandlerFunc) (*HTTPDirectory, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	m := metrics.New(prometheus.NewRegistry())
	client := httpclient.NewRetryClient(httpclient.NewClient(config.HTTPClient{}), 1, zap.NewNop().Sugar())
	return NewHTTPDirectory(client, srv.URL+"/", time.Second, zap.NewNop().Sugar(), m), m
}

func usersAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/users/parent-1/children":
		_, _ = w.Write([]byte(`{"children":["kid-1","kid-2"],"familyId":"fam-1"}`))
	case "/users/kid-1/children":
		_, _ = w.Write([]byte(`{"children":null,"familyId":"fam-1"}`))
	case "/users/loner/children":
		_, _ = w.Write([]byte(`{"children":[],"familyId":""}`))
	case "/users/flaky/children":
		w.WriteHeader(http.StatusInternalServerError)
	case "/health":
		_, _ = w.Write([]byte(`{"status":true}`))
	default:
		http.NotFound(w, r)
	}
}

func TestChildrenOf(t *testing.T) {
	dir, m := newDirectory(t, usersAPI)
	ctx := context.Background()

	children, err := dir.ChildrenOf(ctx, "parent-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"kid-1", "kid-2"}, children)

	children, err = dir.ChildrenOf(ctx, "kid-1")
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.NotNil(t, children)

	children, err = dir.ChildrenOf(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, children)

	_, err = dir.ChildrenOf(ctx, "flaky")
	assert.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calendar.DirectoryLookupsTotal.WithLabelValues("http", "children_of", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calendar.DirectoryLookupsTotal.WithLabelValues("http", "children_of", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calendar.DirectoryLookupsTotal.WithLabelValues("http", "children_of", "error")))
}

func TestIsParentOf(t *testing.T) {
	dir, _ := newDirectory(t, usersAPI)

	ok, err := dir.IsParentOf(context.Background(), "parent-1", "kid-2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.IsParentOf(context.Background(), "parent-1", "kid-3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFamilyOf(t *testing.T) {
	dir, _ := newDirectory(t, usersAPI)
	ctx := context.Background()

	family, err := dir.FamilyOf(ctx, "kid-1")
	require.NoError(t, err)
	assert.Equal(t, "fam-1", family)

	_, err = dir.FamilyOf(ctx, "loner")
	assert.ErrorIs(t, err, appers.ErrNoFamily)

	_, err = dir.FamilyOf(ctx, "ghost")
	assert.ErrorIs(t, err, appers.ErrNoFamily)
}

func TestHealthCheck(t *testing.T) {
	dir, _ := newDirectory(t, usersAPI)
	assert.NoError(t, dir.HealthCheck(context.Background()))

	down, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, down.HealthCheck(context.Background()))
}
