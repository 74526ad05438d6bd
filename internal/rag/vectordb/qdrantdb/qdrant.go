// Package qdrantdb backs the vector index with Qdrant over gRPC.
package qdrantdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

// chunkNamespace maps string chunk ids onto the UUID point ids Qdrant
// requires. The mapping is deterministic so re-upserting a chunk
// overwrites its previous point.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bahamasopendata/chunk"))

type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  uint64
}

type DB struct {
	client     *qdrant.Client
	collection string
	dimension  uint64
	log        *logging.Logger
}

// Connect dials Qdrant. The connection is lazy on the gRPC side, so a
// later EnsureCollection is the real liveness check.
func Connect(cfg Config) (*DB, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	return &DB{
		client:     client,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		log:        logging.New("qdrant"),
	}, nil
}

func (db *DB) Close() error {
	return db.client.Close()
}

// EnsureCollection creates the collection if it does not exist yet.
func (db *DB) EnsureCollection(ctx context.Context) error {
	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return fmt.Errorf("collection exists check: %w", err)
	}
	if exists {
		return nil
	}

	db.log.Info("creating collection", "name", db.collection, "dimension", db.dimension)
	err = db.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", db.collection, err)
	}
	return nil
}

func (db *DB) Upsert(ctx context.Context, entries []vectordb.Entry) error {
	points := make([]*qdrant.PointStruct, len(entries))
	for i, entry := range entries {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(entry.ID)),
			Vectors: qdrant.NewVectors(entry.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":      entry.ID,
				"document":      entry.Metadata.Document,
				"page_number":   entry.Metadata.PageNumber,
				"content":       entry.Metadata.Content,
				"fiscal_year":   entry.Metadata.FiscalYear,
				"document_type": entry.Metadata.DocumentType,
			}),
		}
	}

	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (db *DB) Query(ctx context.Context, vector []float32, topK int, fiscalYear string) ([]vectordb.Match, error) {
	query := &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if fiscalYear != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("fiscal_year", fiscalYear),
			},
		}
	}

	hits, err := db.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	matches := make([]vectordb.Match, 0, len(hits))
	for _, hit := range hits {
		matches = append(matches, vectordb.Match{
			ID:    hit.Payload["chunk_id"].GetStringValue(),
			Score: hit.Score,
			Metadata: vectordb.Metadata{
				Document:     hit.Payload["document"].GetStringValue(),
				PageNumber:   int(hit.Payload["page_number"].GetIntegerValue()),
				Content:      hit.Payload["content"].GetStringValue(),
				FiscalYear:   hit.Payload["fiscal_year"].GetStringValue(),
				DocumentType: hit.Payload["document_type"].GetStringValue(),
			},
		})
	}
	return matches, nil
}

func pointID(chunkID string) string {
	return uuid.NewSHA1(chunkNamespace, []byte(chunkID)).String()
}
