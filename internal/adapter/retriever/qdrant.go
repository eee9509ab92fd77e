package retriever

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"time"

	"ragassist/internal/port"
)

// Qdrant implements port.VectorStore against a Qdrant server's REST API.
// Point IDs in Qdrant must be numeric or UUID, so string IDs are hashed to
// uint64 and the original kept in the payload under "_id".
type Qdrant struct {
	baseURL    string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

func NewQdrant(baseURL, apiKey, collection string, dimension int) *Qdrant {
	return &Qdrant{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		dimension:  dimension,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (q *Qdrant) do(method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, q.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	return q.client.Do(req)
}

func readError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("qdrant status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}

// EnsureCollection creates the collection if it does not exist yet.
func (q *Qdrant) EnsureCollection() error {
	resp, err := q.do(http.MethodGet, "/collections/"+q.collection, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	resp, err = q.do(http.MethodPut, "/collections/"+q.collection, map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	return nil
}

func pointID(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

func (q *Qdrant) Upsert(items []port.VectorItem) error {
	points := make([]map[string]any, 0, len(items))
	for _, item := range items {
		payload := map[string]any{"_id": item.ID}
		for k, v := range item.Metadata {
			payload[k] = v
		}
		points = append(points, map[string]any{
			"id":      pointID(item.ID),
			"vector":  item.Vector,
			"payload": payload,
		})
	}

	resp, err := q.do(http.MethodPut, "/collections/"+q.collection+"/points?wait=true",
		map[string]any{"points": points})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	return nil
}

type qdrantSearchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search queries the collection. A missing collection reports an empty
// result rather than an error, so a fresh deployment degrades to "no
// documentation" answers instead of failing.
func (q *Qdrant) Search(query []float32, k int, filter map[string]string) ([]port.VectorResult, error) {
	body := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	if len(filter) > 0 {
		var must []map[string]any
		for key, val := range filter {
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": val},
			})
		}
		body["filter"] = map[string]any{"must": must}
	}

	resp, err := q.do(http.MethodPost, "/collections/"+q.collection+"/points/search", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var out qdrantSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("qdrant decode: %w", err)
	}

	results := make([]port.VectorResult, 0, len(out.Result))
	for _, r := range out.Result {
		metadata := make(map[string]string, len(r.Payload))
		id := ""
		for k, v := range r.Payload {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if k == "_id" {
				id = s
				continue
			}
			metadata[k] = s
		}
		results = append(results, port.VectorResult{
			ID: id,
			// Qdrant already returns cosine similarity in [-1,1].
			Score:    r.Score,
			Metadata: metadata,
		})
	}
	return results, nil
}

func (q *Qdrant) Delete(ids []string) error {
	points := make([]uint64, 0, len(ids))
	for _, id := range ids {
		points = append(points, pointID(id))
	}

	resp, err := q.do(http.MethodPost, "/collections/"+q.collection+"/points/delete?wait=true",
		map[string]any{"points": points})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	return nil
}

func (q *Qdrant) Count() (int, error) {
	resp, err := q.do(http.MethodPost, "/collections/"+q.collection+"/points/count",
		map[string]any{"exact": true})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if resp.StatusCode != http.StatusOK {
		return 0, readError(resp)
	}

	var out struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Result.Count, nil
}
