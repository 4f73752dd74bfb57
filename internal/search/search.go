package search

// Result is a single search hit returned to the caller.
type Result struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Status    string `json:"status"`
	Version   string `json:"version"`
}

// Query describes a search request. ProjectIDs scopes results to the
// projects the caller can see; empty means no scoping (global admin).
type Query struct {
	Text       string
	ProjectIDs []string
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// RecordDoc is the data we index for a decision record.
type RecordDoc struct {
	ID           string `json:"id"`
	ProjectID    string `json:"projectId"`
	Title        string `json:"title"`
	Context      string `json:"context"`
	Decision     string `json:"decision"`
	Consequences string `json:"consequences"`
	Status       string `json:"status"`
	Version      string `json:"version"`
}

// Searcher can execute a full-text search over decision records.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}
