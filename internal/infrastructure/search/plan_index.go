// Package search keeps the Elasticsearch copy of plans used by title search.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/oops"

	"github.com/oksasatya/studypal/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

const planMapping = `{
  "mappings": {
    "properties": {
      "owner_id":   {"type": "long"},
      "title":      {"type": "text"},
      "start_date": {"type": "date", "format": "yyyy-MM-dd"},
      "end_date":   {"type": "date", "format": "yyyy-MM-dd"},
      "updated_at": {"type": "date"}
    }
  }
}`

type PlanIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewPlanIndex(es *elasticsearch.Client, index string) *PlanIndex {
	return &PlanIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (x *PlanIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return oops.In("search").With("operation", "index exists").With("index", x.index).Wrap(err)
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(c),
		x.es.Indices.Create.WithBody(strings.NewReader(planMapping)))
	if err != nil {
		return oops.In("search").With("operation", "create index").With("index", x.index).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return oops.In("search").With("operation", "create index").With("status", res.Status()).Errorf("create index %s failed", x.index)
	}
	return nil
}

type planDoc struct {
	OwnerID   int64  `json:"owner_id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	UpdatedAt string `json:"updated_at"`
}

func (x *PlanIndex) Index(ctx context.Context, p *entity.Plan) error {
	b, err := json.Marshal(planDoc{
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		StartDate: p.StartDate.Format(entity.DateLayout),
		EndDate:   p.EndDate.Format(entity.DateLayout),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{Index: x.index, DocumentID: strconv.FormatInt(p.ID, 10), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return oops.In("search").With("operation", "index plan").With("plan_id", p.ID).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return oops.In("search").With("operation", "index plan").With("status", res.Status()).Errorf("index plan %d failed", p.ID)
	}
	return nil
}

func (x *PlanIndex) Remove(ctx context.Context, planID int64) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: strconv.FormatInt(planID, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return oops.In("search").With("operation", "remove plan").With("plan_id", planID).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return oops.In("search").With("operation", "remove plan").With("status", res.Status()).Errorf("remove plan %d failed", planID)
	}
	return nil
}

// RemoveOwner drops every document belonging to ownerID.
func (x *PlanIndex) RemoveOwner(ctx context.Context, ownerID int64) error {
	body := fmt.Sprintf(`{"query":{"term":{"owner_id":%d}}}`, ownerID)
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.DeleteByQuery([]string{x.index}, strings.NewReader(body), x.es.DeleteByQuery.WithContext(c))
	if err != nil {
		return oops.In("search").With("operation", "remove owner").With("owner_id", ownerID).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return oops.In("search").With("operation", "remove owner").With("status", res.Status()).Errorf("remove plans of owner %d failed", ownerID)
	}
	return nil
}

// Search runs a title match restricted to ownerID and returns plan ids by score.
func (x *PlanIndex) Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error) {
	b, err := json.Marshal(searchQuery(ownerID, q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, oops.In("search").With("operation", "search plans").With("owner_id", ownerID).Wrap(err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, oops.In("search").With("operation", "search plans").With("status", res.Status()).Errorf("search failed")
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, oops.In("search").With("operation", "decode search response").Wrap(err)
	}
	return parsed.ids(), nil
}

func searchQuery(ownerID int64, q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{
						"match": map[string]any{
							"title": map[string]any{"query": q, "fuzziness": "AUTO"},
						},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"owner_id": ownerID}},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// ids skips hits whose _id is not a plan id.
func (r searchResponse) ids() []int64 {
	out := make([]int64, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
