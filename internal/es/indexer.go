package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

const TransactionIndex = "transactions"

// Indexer archives settled transactions for later lookup. Indexing is
// best-effort: the transaction of record lives in the DB.
type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func (i *Indexer) IndexTransaction(ctx context.Context, t *models.Transaction) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("es: marshal transaction: %w", err)
	}

	res, err := i.ES.Index(
		i.Index,
		bytes.NewReader(data),
		i.ES.Index.WithDocumentID(t.ID.String()),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index transaction: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: index transaction: %s: %s", res.Status(), body)
	}
	return nil
}

// Search runs a simple query-string search over the transaction archive.
func (i *Indexer) Search(ctx context.Context, query string, size int) ([]models.Transaction, error) {
	if size <= 0 {
		size = 20
	}
	body := map[string]any{
		"size": size,
		"query": map[string]any{
			"query_string": map[string]any{"query": query},
		},
		"sort": []map[string]any{{"created_at": map[string]any{"order": "desc"}}},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		b, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: search: %s: %s", res.Status(), b)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Transaction `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("es: decode search response: %w", err)
	}

	out := make([]models.Transaction, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
