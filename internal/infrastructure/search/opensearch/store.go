package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/section"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// nameFields are the document fields a name hint is matched against, in
// preference order.
var nameFields = []string{"name_es", "generic_name_es", "name", "generic_name"}

// Store is the OpenSearch-backed document store for vademecum fragments.
type Store struct {
	client *opensearchgo.Client
	cfg    config.OpenSearchConfig
	logger logging.Logger
}

// NewStore constructs a Store over an existing client.
func NewStore(client *opensearchgo.Client, cfg config.OpenSearchConfig, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{client: client, cfg: cfg, logger: logger.Named("opensearch")}
}

// indexMapping keeps name fields as keyword-subfielded text and the section
// label as keyword so exact section passes stay cheap.
const indexMapping = `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 1},
  "mappings": {
    "properties": {
      "name_es":         {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "generic_name_es": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "name":            {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "generic_name":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "section":         {"type": "keyword"},
      "text_es":         {"type": "text"},
      "text":            {"type": "text"}
    }
  }
}`

// EnsureIndex creates the document index with its mapping when it does not
// exist yet. Safe to call on every startup.
func (s *Store) EnsureIndex(ctx context.Context) error {
	exists := opensearchapi.IndicesExistsRequest{Index: []string{s.cfg.Index}}
	res, err := exists.Do(ctx, s.client)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "check index existence")
	}
	defer res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	create := opensearchapi.IndicesCreateRequest{
		Index: s.cfg.Index,
		Body:  strings.NewReader(indexMapping),
	}
	cres, err := create.Do(ctx, s.client)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "create index")
	}
	defer cres.Body.Close()
	if cres.IsError() {
		return apperrors.Newf(apperrors.ErrCodeStoreUnavailable, "create index: %s", cres.Status())
	}
	s.logger.Info("index created", logging.String("index", s.cfg.Index))
	return nil
}

type searchEnvelope struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Scan streams every document of the index through fn using the scroll API.
// Used by the vocabulary build; fn returning an error aborts the scan.
func (s *Store) Scan(ctx context.Context, fn func(record.Record) error) error {
	keepAlive := s.cfg.ScrollKeepAlive
	if keepAlive <= 0 {
		keepAlive = 2 * time.Minute
	}

	body := map[string]interface{}{
		"size":    s.cfg.ScrollSize,
		"query":   map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":    []string{"_doc"},
		"_source": true,
	}
	env, err := s.search(ctx, body, func(req *opensearchapi.SearchRequest) {
		req.Scroll = keepAlive
	})
	if err != nil {
		return err
	}

	scrollID := env.ScrollID
	defer s.clearScroll(scrollID)

	for len(env.Hits.Hits) > 0 {
		for _, hit := range env.Hits.Hits {
			if err := fn(record.Decode(hit.ID, hit.Source)); err != nil {
				return err
			}
		}
		env, err = s.scroll(ctx, scrollID, keepAlive)
		if err != nil {
			return err
		}
		if env.ScrollID != "" {
			scrollID = env.ScrollID
		}
	}
	return nil
}

// FetchBySectionAndName retrieves fragments whose stored section label
// matches the requested section, optionally narrowed by a name hint. One
// pass runs per known label, Spanish first and then every English alias,
// and the result is the deduplicated union of all passes. Results are
// post-filtered to the canonical section because legacy labels overlap.
func (s *Store) FetchBySectionAndName(ctx context.Context, sec section.Section, nameHint string, limit int) ([]record.Record, error) {
	labels := append([]string{section.Label(sec)}, section.EnglishAliases(sec)...)
	seen := make(map[string]bool)
	var out []record.Record
	for _, label := range labels {
		recs, err := s.fetchByLabel(ctx, label, nameHint, limit)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			if r.Section != sec || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) fetchByLabel(ctx context.Context, label, nameHint string, limit int) ([]record.Record, error) {
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{"match": map[string]interface{}{"section": label}},
		},
	}
	if nameHint != "" {
		boolQuery["should"] = nameShoulds(nameHint)
		boolQuery["minimum_should_match"] = 1
	}
	body := map[string]interface{}{
		"size":  limit,
		"query": map[string]interface{}{"bool": boolQuery},
	}
	env, err := s.search(ctx, body, nil)
	if err != nil {
		return nil, err
	}
	return decodeHits(env), nil
}

// SearchByName retrieves fragments matching a name hint across every name
// field, regardless of section. This is the broad pass behind the
// metadata-first retrieval and the public search endpoint.
func (s *Store) SearchByName(ctx context.Context, nameHint string, limit int) ([]record.Record, error) {
	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               nameShoulds(nameHint),
				"minimum_should_match": 1,
			},
		},
	}
	env, err := s.search(ctx, body, nil)
	if err != nil {
		return nil, err
	}
	return decodeHits(env), nil
}

func nameShoulds(hint string) []interface{} {
	shoulds := make([]interface{}, 0, len(nameFields))
	for _, f := range nameFields {
		shoulds = append(shoulds, map[string]interface{}{
			"match": map[string]interface{}{f: hint},
		})
	}
	return shoulds
}

// BulkUpsert indexes the given documents, replacing any with the same id.
// Returns the number of indexed documents.
func (s *Store) BulkUpsert(ctx context.Context, docs []record.Record) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	for _, d := range docs {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_index": s.cfg.Index, "_id": d.ID},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return 0, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode bulk action")
		}
		if err := json.NewEncoder(&buf).Encode(d.Payload); err != nil {
			return 0, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode bulk document")
		}
	}

	req := opensearchapi.BulkRequest{Body: &buf, Refresh: "wait_for"}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "bulk index")
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, apperrors.Newf(apperrors.ErrCodeStoreUnavailable, "bulk index: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decode bulk response")
	}
	indexed := 0
	for _, item := range bulkRes.Items {
		for _, st := range item {
			if st.Status >= 200 && st.Status < 300 {
				indexed++
			}
		}
	}
	if bulkRes.Errors && indexed == 0 {
		return 0, apperrors.New(apperrors.ErrCodeStoreUnavailable, "bulk index rejected every document")
	}
	return indexed, nil
}

func (s *Store) search(ctx context.Context, body map[string]interface{}, customize func(*opensearchapi.SearchRequest)) (*searchEnvelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode search query")
	}

	timeout := s.cfg.SearchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := opensearchapi.SearchRequest{
		Index: []string{s.cfg.Index},
		Body:  bytes.NewReader(payload),
	}
	if customize != nil {
		customize(&req)
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "search request failed")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperrors.Newf(apperrors.ErrCodeStoreUnavailable, "search request: %s", res.Status())
	}
	return decodeEnvelope(res.Body)
}

func (s *Store) scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*searchEnvelope, error) {
	req := opensearchapi.ScrollRequest{ScrollID: scrollID, Scroll: keepAlive}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "scroll request failed")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperrors.Newf(apperrors.ErrCodeStoreUnavailable, "scroll request: %s", res.Status())
	}
	return decodeEnvelope(res.Body)
}

func (s *Store) clearScroll(scrollID string) {
	if scrollID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := opensearchapi.ClearScrollRequest{ScrollID: []string{scrollID}}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		s.logger.Warn("clear scroll failed", logging.Err(err))
		return
	}
	res.Body.Close()
}

func decodeEnvelope(body io.Reader) (*searchEnvelope, error) {
	env := &searchEnvelope{}
	if err := json.NewDecoder(body).Decode(env); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decode search response")
	}
	return env, nil
}

func decodeHits(env *searchEnvelope) []record.Record {
	recs := make([]record.Record, 0, len(env.Hits.Hits))
	for _, hit := range env.Hits.Hits {
		recs = append(recs, record.Decode(hit.ID, hit.Source))
	}
	return recs
}

// DeleteByID removes one fragment. Used by the admin surface.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	req := opensearchapi.DeleteRequest{Index: s.cfg.Index, DocumentID: id}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "delete document")
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return apperrors.Newf(apperrors.ErrCodeNotFound, "document %s not found", id)
	}
	if res.IsError() {
		return apperrors.Newf(apperrors.ErrCodeStoreUnavailable, "delete document: %s", res.Status())
	}
	return nil
}

var _ fmt.Stringer = (*Store)(nil)

// String identifies the store in logs.
func (s *Store) String() string { return fmt.Sprintf("opensearch[%s]", s.cfg.Index) }
