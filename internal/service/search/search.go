package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/mrvvsreddy/school-p1/internal/models"
)

// IndexNotice writes the notice document so /api/search/notices can find it.
func IndexNotice(ctx context.Context, es *elasticsearch.Client, index string, n *models.Notice) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(n); err != nil {
		return fmt.Errorf("index notice: %w", err)
	}

	res, err := es.Index(
		index,
		&buf,
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(n.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index notice: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index notice: %s", res.Status())
	}
	return nil
}

func DeleteNotice(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	defer res.Body.Close()
	return nil
}

func SearchNotices(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Notice, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "content"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search notices: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search notices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search notices: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Notice `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	notices := make([]models.Notice, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		notices[i] = hit.Source
	}
	return r.Hits.Total.Value, notices, nil
}
