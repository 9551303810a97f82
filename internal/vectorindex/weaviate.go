package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const className = "MemoryVector"

// weavIndex implements Index using the Weaviate Go client. Logical
// record ids are mapped to deterministic UUIDv5 object ids so that a
// second upsert with the same id overwrites the first.
type weavIndex struct {
	client  *weaviate.Client
	baseURL string // host:port without scheme
}

// NewWeaviateIndex constructs an Index backed by Weaviate at baseURL.
// baseURL should be host:port (without scheme), e.g. "localhost:8081".
func NewWeaviateIndex(baseURL string) (Index, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &weavIndex{client: cl, baseURL: baseURL}, nil
}

// objectID derives the stable Weaviate object id for a logical record id.
func objectID(namespace, id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(namespace+"/"+id)).String()
}

func (w *weavIndex) Upsert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("vectorindex: record id required")
	}
	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	props := map[string]interface{}{
		"recordId":   rec.ID,
		"namespace":  rec.Namespace,
		"userId":     stringMeta(rec.Metadata, "userId"),
		"recordType": stringMeta(rec.Metadata, "type"),
		"metadata":   string(metaJSON),
	}

	obj := &models.Object{
		Class:      className,
		ID:         strfmt.UUID(objectID(rec.Namespace, rec.ID)),
		Properties: props,
		Vector:     rec.Embedding,
	}

	// Batch objects are applied with PUT semantics: same id replaces.
	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(obj).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate upsert: %w", err)
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("weaviate upsert: %s", r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func (w *weavIndex) Query(ctx context.Context, q Query) ([]Match, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	where := filters.Where().WithOperator(filters.And).WithOperands([]*filters.WhereBuilder{
		filters.Where().WithPath([]string{"namespace"}).WithOperator(filters.Equal).WithValueText(q.Namespace),
		filters.Where().WithPath([]string{"userId"}).WithOperator(filters.Equal).WithValueText(q.UserID),
	})

	nv := (&gql.NearVectorArgumentBuilder{}).WithVector(q.Embedding)

	resp, err := w.client.GraphQL().Get().
		WithClassName(className).
		WithWhere(where).
		WithNearVector(nv).
		WithLimit(topK).
		WithFields(
			gql.Field{Name: "recordId"},
			gql.Field{Name: "metadata"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "certainty"}, {Name: "distance"}}},
		).
		Do(ctx)
	if err != nil {
		log.Error().Err(err).Str("userId", q.UserID).Msg("weaviate query failed")
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return []Match{}, nil
	}
	raw, ok := getData[className].([]interface{})
	if !ok {
		return []Match{}, nil
	}

	out := make([]Match, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		match := Match{}
		match.ID, _ = m["recordId"].(string)
		if metaStr, ok := m["metadata"].(string); ok && metaStr != "" {
			var bag map[string]interface{}
			if err := json.Unmarshal([]byte(metaStr), &bag); err == nil {
				match.Metadata = bag
			}
		}
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			match.Score = extractScore(add)
		}
		out = append(out, match)
	}
	return out, nil
}

func (w *weavIndex) DeleteByID(ctx context.Context, namespace string, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		err := w.client.Data().Deleter().
			WithClassName(className).
			WithID(objectID(namespace, id)).
			Do(ctx)
		if err != nil && !strings.Contains(err.Error(), "404") {
			return fmt.Errorf("weaviate delete %s: %w", id, err)
		}
	}
	return nil
}

func (w *weavIndex) DeleteByUser(ctx context.Context, namespace, userID string) error {
	if userID == "" {
		return fmt.Errorf("vectorindex: userId required for bulk delete")
	}
	where := filters.Where().WithOperator(filters.And).WithOperands([]*filters.WhereBuilder{
		filters.Where().WithPath([]string{"namespace"}).WithOperator(filters.Equal).WithValueText(namespace),
		filters.Where().WithPath([]string{"userId"}).WithOperator(filters.Equal).WithValueText(userID),
	})
	_, err := w.client.Batch().ObjectsBatchDeleter().
		WithClassName(className).
		WithWhere(where).
		WithOutput("minimal").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate bulk delete: %w", err)
	}
	return nil
}

// HealthPing implements HealthPinger. It calls GET /v1/meta and expects
// 200 OK.
func (w *weavIndex) HealthPing(ctx context.Context) error {
	if w == nil || w.baseURL == "" {
		return fmt.Errorf("weaviate baseURL missing")
	}
	url := w.baseURL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/meta", nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weaviate status %d", resp.StatusCode)
	}
	return nil
}

func stringMeta(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func extractScore(add map[string]interface{}) float64 {
	read := func(v interface{}) (float64, bool) {
		switch t := v.(type) {
		case float64:
			return t, true
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f, true
			}
		}
		return 0, false
	}
	if f, ok := read(add["certainty"]); ok {
		return f
	}
	if f, ok := read(add["distance"]); ok {
		return 1 - f
	}
	return 0
}

// formatGraphQLErrors returns a compact string with messages extracted for logging.
func formatGraphQLErrors(errs interface{}) string {
	if b, err := json.Marshal(errs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", errs)
}
