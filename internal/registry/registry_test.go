package registry

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/salutethegenius/bahamasopendata/internal/data/redisstore"
	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
)

func redisBackedStore(t *testing.T) RecordStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(redisstore.NewTestStore(client))
}

// each store implementation must behave identically under the registry
func stores(t *testing.T) map[string]RecordStore {
	return map[string]RecordStore{
		"redis":  redisBackedStore(t),
		"memory": NewMemoryStore(),
	}
}

func TestRegister_Dedup(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			reg := New(store)
			ctx := context.Background()
			raw := []byte("identical file bytes")

			first, dup, err := reg.Register(ctx, "budget_2024.pdf", "https://example.gov.bs/budget.pdf", raw)
			if err != nil {
				t.Fatalf("first register: %v", err)
			}
			if dup {
				t.Error("first register reported duplicate")
			}
			if first.Hash == "" || len(first.Hash) != 64 {
				t.Errorf("Hash = %q, want 64 hex chars", first.Hash)
			}
			if first.Extraction != document.StatusPending || first.Embedding != document.StatusPending {
				t.Errorf("new record stages = %s/%s, want pending/pending", first.Extraction, first.Embedding)
			}

			// same bytes under a different filename is still the same document
			second, dup, err := reg.Register(ctx, "renamed.pdf", "", raw)
			if err != nil {
				t.Fatalf("second register: %v", err)
			}
			if !dup {
				t.Error("second register did not report duplicate")
			}
			if second.Hash != first.Hash || second.Filename != first.Filename {
				t.Errorf("duplicate returned a different record: %+v", second)
			}

			records, err := reg.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(records) != 1 {
				t.Errorf("registry holds %d records, want 1", len(records))
			}
		})
	}
}

func TestRegister_DistinctContent(t *testing.T) {
	reg := New(NewMemoryStore())
	ctx := context.Background()

	a, _, err := reg.Register(ctx, "a.pdf", "", []byte("content a"))
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := reg.Register(ctx, "b.pdf", "", []byte("content b"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash == b.Hash {
		t.Error("distinct content produced the same hash")
	}
}

func TestRegister_InferredFields(t *testing.T) {
	reg := New(NewMemoryStore())

	rec, _, err := reg.Register(context.Background(), "Budget Communication 2024-25.pdf", "", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Type != document.BudgetCommunication {
		t.Errorf("Type = %v", rec.Type)
	}
	if rec.FiscalYear != "2024/25" {
		t.Errorf("FiscalYear = %q", rec.FiscalYear)
	}
	if rec.Name != "Budget Communication 2024-25" {
		t.Errorf("Name = %q", rec.Name)
	}
	if rec.SizeBytes != 1 {
		t.Errorf("SizeBytes = %d", rec.SizeBytes)
	}
}

func TestAdvanceStage(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			reg := New(store)
			ctx := context.Background()

			rec, _, err := reg.Register(ctx, "budget.pdf", "", []byte("bytes"))
			if err != nil {
				t.Fatal(err)
			}

			if err := reg.AdvanceStage(ctx, &rec, document.StageExtraction, document.StageResult{Status: document.StatusSuccess}); err != nil {
				t.Fatal(err)
			}
			if err := reg.AdvanceStage(ctx, &rec, document.StageChunking, document.StageResult{Count: 42}); err != nil {
				t.Fatal(err)
			}
			if err := reg.AdvanceStage(ctx, &rec, document.StageEmbedding, document.StageResult{Status: document.StatusSuccess, Count: 40}); err != nil {
				t.Fatal(err)
			}

			persisted, found, err := reg.Lookup(ctx, rec.Hash)
			if err != nil || !found {
				t.Fatalf("lookup: found=%v err=%v", found, err)
			}
			if persisted.Extraction != document.StatusSuccess {
				t.Errorf("Extraction = %s", persisted.Extraction)
			}
			if persisted.ChunkCount != 42 {
				t.Errorf("ChunkCount = %d", persisted.ChunkCount)
			}
			if persisted.Embedding != document.StatusSuccess || persisted.VectorCount != 40 {
				t.Errorf("Embedding = %s VectorCount = %d", persisted.Embedding, persisted.VectorCount)
			}
			if persisted.EmbeddedAt.IsZero() {
				t.Error("EmbeddedAt not set")
			}
		})
	}
}

func TestAdvanceStage_StagesIndependent(t *testing.T) {
	reg := New(NewMemoryStore())
	ctx := context.Background()

	rec, _, err := reg.Register(ctx, "budget.pdf", "", []byte("bytes"))
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.AdvanceStage(ctx, &rec, document.StageExtraction, document.StageResult{Status: document.StatusError}); err != nil {
		t.Fatal(err)
	}

	persisted, _, _ := reg.Lookup(ctx, rec.Hash)
	if persisted.Embedding != document.StatusPending {
		t.Errorf("extraction outcome leaked into embedding: %s", persisted.Embedding)
	}
}

func TestAdvanceStage_UnknownStage(t *testing.T) {
	reg := New(NewMemoryStore())
	rec := document.Record{Hash: "abc"}

	if err := reg.AdvanceStage(context.Background(), &rec, "shipping", document.StageResult{}); err == nil {
		t.Error("unknown stage must error")
	}
}
