package v1

import "github.com/vecadmin/vecadmin/internal/domain"

// Legacy include flags. Embeddings are only requested by detail views and
// rename copies, never by record listings.
const (
	includeDocuments  = "documents"
	includeMetadatas  = "metadatas"
	includeEmbeddings = "embeddings"
	includeDistances  = "distances"
)

// collectionRow is one element of the legacy list response.
type collectionRow struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

type getRequest struct {
	IDs     []string      `json:"ids,omitempty"`
	Where   domain.Filter `json:"where,omitempty"`
	Limit   *int          `json:"limit,omitempty"`
	Offset  *int          `json:"offset,omitempty"`
	Include []string      `json:"include"`
}

// getResponse is the column-major legacy get payload: parallel arrays
// indexed by record position. Documents entries are nullable.
type getResponse struct {
	IDs        []string         `json:"ids"`
	Documents  []*string        `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
	Embeddings [][]float32      `json:"embeddings"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32   `json:"query_embeddings"`
	NResults        int           `json:"n_results"`
	Where           domain.Filter `json:"where,omitempty"`
	Include         []string      `json:"include"`
}

// queryResponse is batched column-major: the outer dimension follows the
// query batch, the inner one the matches of each query.
type queryResponse struct {
	IDs        [][]string         `json:"ids"`
	Documents  [][]*string        `json:"documents"`
	Metadatas  [][]map[string]any `json:"metadatas"`
	Embeddings [][][]float32      `json:"embeddings"`
	Distances  [][]float64        `json:"distances"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type createCollectionRequest struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type createCollectionResponse struct {
	ID string `json:"id"`
}

// addRequest is the column-major bulk insert payload.
type addRequest struct {
	IDs        []string         `json:"ids"`
	Documents  []*string        `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
	Embeddings [][]float32      `json:"embeddings"`
}

// recordsFromColumns pivots a column-major get response into records.
func recordsFromColumns(resp getResponse) []domain.Record {
	records := make([]domain.Record, len(resp.IDs))
	for i, id := range resp.IDs {
		rec := domain.Record{ID: id}
		if i < len(resp.Documents) && resp.Documents[i] != nil {
			rec.Document = *resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			rec.Metadata = resp.Metadatas[i]
		}
		if i < len(resp.Embeddings) {
			rec.Embedding = resp.Embeddings[i]
		}
		records[i] = rec
	}
	return records
}

// recordsFromBatch pivots the first batch element of a query response.
// The facade always sends a one-element query batch.
func recordsFromBatch(resp queryResponse) []domain.Record {
	if len(resp.IDs) == 0 {
		return []domain.Record{}
	}
	ids := resp.IDs[0]
	records := make([]domain.Record, len(ids))
	for i, id := range ids {
		rec := domain.Record{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) && resp.Documents[0][i] != nil {
			rec.Document = *resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			rec.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Embeddings) > 0 && i < len(resp.Embeddings[0]) {
			rec.Embedding = resp.Embeddings[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			rec.Distance = resp.Distances[0][i]
		}
		records[i] = rec
	}
	return records
}

// columnsFromRecords pivots records into a column-major add payload.
func columnsFromRecords(records []domain.Record) addRequest {
	req := addRequest{
		IDs:        make([]string, len(records)),
		Documents:  make([]*string, len(records)),
		Metadatas:  make([]map[string]any, len(records)),
		Embeddings: make([][]float32, len(records)),
	}
	for i, rec := range records {
		req.IDs[i] = rec.ID
		if rec.Document != "" {
			doc := rec.Document
			req.Documents[i] = &doc
		}
		req.Metadatas[i] = rec.Metadata
		req.Embeddings[i] = rec.Embedding
	}
	return req
}
