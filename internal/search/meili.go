package search

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxRecords = "cairn_records"

// Meili implements Searcher via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the record index.
// An unreachable server is tolerated; the health loop retries and the
// service falls back to PG FTS meanwhile.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{client: client, done: make(chan struct{})}
	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: idxRecords, PrimaryKey: "id"}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxRecords, err)
	}

	index := m.client.Index(idxRecords)
	filterable := []interface{}{"projectId", "status"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs: %v", err)
	}
	searchable := []string{"title", "context", "decision", "consequences"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs: %v", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	request := &meili.SearchRequest{
		Limit:  limit,
		Offset: int64(q.Offset),
	}
	if len(q.ProjectIDs) > 0 {
		filters := make([]string, 0, len(q.ProjectIDs))
		for _, id := range q.ProjectIDs {
			filters = append(filters, fmt.Sprintf("projectId = %q", id))
		}
		request.Filter = []any{filters}
	}

	resp, err := m.client.Index(idxRecords).Search(q.Text, request)
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc map[string]any
		if err := hit.Decode(&doc); err != nil {
			continue
		}
		results = append(results, Result{
			ID:        stringField(doc, "id"),
			ProjectID: stringField(doc, "projectId"),
			Title:     stringField(doc, "title"),
			Snippet:   stringField(doc, "decision"),
			Status:    stringField(doc, "status"),
			Version:   stringField(doc, "version"),
		})
	}
	return results, int(resp.EstimatedTotalHits), nil
}

// IndexRecord upserts one record document.
func (m *Meili) IndexRecord(doc RecordDoc) error {
	if _, err := m.client.Index(idxRecords).AddDocuments([]RecordDoc{doc}, nil); err != nil {
		return fmt.Errorf("index record %s: %w", doc.ID, err)
	}
	return nil
}

func stringField(doc map[string]any, key string) string {
	value, _ := doc[key].(string)
	return value
}
