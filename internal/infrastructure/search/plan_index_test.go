package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/studypal/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   string
}

// fakeES answers like an Elasticsearch node and records every request.
func fakeES(t *testing.T, respond func(r *http.Request) (int, string)) (*elasticsearch.Client, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()

		status, body := respond(r)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestSearchQuery_FiltersByOwner(t *testing.T) {
	b, err := json.Marshal(searchQuery(42, "exams", 5))
	require.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, `"filter":[{"term":{"owner_id":42}}]`)
	assert.Contains(t, s, `"query":"exams"`)
	assert.Contains(t, s, `"size":5`)
}

func TestSearchResponse_IDs(t *testing.T) {
	var r searchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"hits":{"hits":[{"_id":"3"},{"_id":"junk"},{"_id":"1"}]}}`), &r))
	assert.Equal(t, []int64{3, 1}, r.ids())
}

func TestPlanIndex_Search(t *testing.T) {
	es, requests := fakeES(t, func(*http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"hits":[{"_id":"7"},{"_id":"2"}]}}`
	})

	ids, err := NewPlanIndex(es, "plans").Search(context.Background(), 9, "thesis", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 2}, ids)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/plans/_search", reqs[0].path)
	assert.Contains(t, reqs[0].body, `"owner_id":9`)
}

func TestPlanIndex_SearchError(t *testing.T) {
	es, _ := fakeES(t, func(*http.Request) (int, string) {
		return http.StatusInternalServerError, `{"error":"boom"}`
	})

	_, err := NewPlanIndex(es, "plans").Search(context.Background(), 9, "thesis", 10)
	assert.Error(t, err)
}

func TestPlanIndex_IndexAndRemove(t *testing.T) {
	es, requests := fakeES(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodDelete {
			return http.StatusNotFound, `{"result":"not_found"}`
		}
		return http.StatusCreated, `{"result":"created"}`
	})
	x := NewPlanIndex(es, "plans")

	start, _ := time.Parse(entity.DateLayout, "2026-01-01")
	p := &entity.Plan{ID: 5, OwnerID: 9, Title: "Exams", StartDate: start, EndDate: start}
	require.NoError(t, x.Index(context.Background(), p))
	require.NoError(t, x.Remove(context.Background(), 5), "removing a missing document is not an error")

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/plans/_doc/5", reqs[0].path)
	assert.True(t, strings.Contains(reqs[0].body, `"start_date":"2026-01-01"`))
	assert.Equal(t, http.MethodDelete, reqs[1].method)
}

func TestPlanIndex_EnsureIndex(t *testing.T) {
	es, requests := fakeES(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodHead {
			return http.StatusNotFound, ``
		}
		return http.StatusOK, `{"acknowledged":true}`
	})

	require.NoError(t, NewPlanIndex(es, "plans").EnsureIndex(context.Background()))

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[1].method)
	assert.Contains(t, reqs[1].body, `"owner_id"`)
}
