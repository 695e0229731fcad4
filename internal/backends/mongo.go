package backends

import (
	"context"
	"dataweave/internal/database"
	"dataweave/internal/models"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxDocuments caps a single read so an unbounded find cannot flood the
// aggregator.
const maxDocuments = 100

// MongoExecutor runs queries against the document-store backend. Native
// input is either a JSON array (aggregation pipeline) or a JSON object
// find spec {"collection": ..., "query": ..., "projection": ...}.
type MongoExecutor struct {
	mdb        *database.MongoDB
	translator Translator
}

// NewMongoExecutor creates the document backend adapter. mdb may be nil when
// initialization failed upstream; the executor then reports unavailable.
func NewMongoExecutor(mdb *database.MongoDB, translator Translator) *MongoExecutor {
	return &MongoExecutor{mdb: mdb, translator: translator}
}

// Name returns the backend key
func (e *MongoExecutor) Name() string { return models.BackendNoSQL }

// Available reports whether the MongoDB connection was initialized
func (e *MongoExecutor) Available() bool { return e.mdb != nil }

// findSpec is the native object form of a document query.
type findSpec struct {
	Collection string         `json:"collection"`
	Query      map[string]any `json:"query"`
	Projection map[string]any `json:"projection"`
}

// Execute translates (if needed) and runs the query against MongoDB.
func (e *MongoExecutor) Execute(ctx context.Context, query string) models.ExecutionResult {
	start := time.Now()

	if e.mdb == nil {
		return failure("", 0, "backend unavailable")
	}

	native := strings.TrimSpace(query)
	if !IsNativeMongo(native) {
		translated, err := e.translator.Translate(ctx, query, database.MongoSchemaContext)
		if err != nil {
			return failure("", time.Since(start).Milliseconds(), "failed to translate query: %v", err)
		}
		native = strings.TrimSpace(translated)
		log.Printf("🔄 [NOSQL] Translated %q -> %q", query, native)
	}

	var data []map[string]any
	var err error
	if strings.HasPrefix(native, "[") {
		data, err = e.runPipeline(ctx, native)
	} else {
		data, err = e.runFind(ctx, native)
	}
	if err != nil {
		return failure(native, time.Since(start).Milliseconds(), "query failed: %v", err)
	}

	return models.ExecutionResult{
		Success:     true,
		NativeQuery: native,
		RowCount:    len(data),
		Data:        data,
		ElapsedMs:   time.Since(start).Milliseconds(),
	}
}

// runFind executes a find spec against its collection.
func (e *MongoExecutor) runFind(ctx context.Context, native string) ([]map[string]any, error) {
	var spec findSpec
	if err := json.Unmarshal([]byte(native), &spec); err != nil {
		return nil, fmt.Errorf("invalid find spec: %w", err)
	}
	if spec.Collection == "" {
		spec.Collection = database.CollectionMovies
	}
	filter := spec.Query
	if filter == nil {
		filter = map[string]any{}
	}

	opts := options.Find().SetLimit(maxDocuments)
	if spec.Projection != nil {
		opts.SetProjection(spec.Projection)
	}

	cursor, err := e.mdb.Collection(spec.Collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return sanitizeDocs(docs), nil
}

// runPipeline executes an aggregation pipeline. The pipeline carries no
// collection name, so the candidate collections are tried in order until one
// returns documents — the same successive-try behavior power users expect
// from raw pipelines here.
func (e *MongoExecutor) runPipeline(ctx context.Context, native string) ([]map[string]any, error) {
	var pipeline []bson.M
	if err := json.Unmarshal([]byte(native), &pipeline); err != nil {
		return nil, fmt.Errorf("invalid aggregation pipeline: %w", err)
	}

	candidates := []string{database.CollectionMovies, database.CollectionComments, database.CollectionTheaters}
	var lastErr error
	for _, coll := range candidates {
		cursor, err := e.mdb.Collection(coll).Aggregate(ctx, pipeline)
		if err != nil {
			lastErr = err
			continue
		}
		var docs []bson.M
		err = cursor.All(ctx, &docs)
		cursor.Close(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if len(docs) > 0 {
			if len(docs) > maxDocuments {
				docs = docs[:maxDocuments]
			}
			return sanitizeDocs(docs), nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// sanitizeDocs converts BSON documents into plain JSON-friendly maps.
func sanitizeDocs(docs []bson.M) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, sanitizeMap(doc))
	}
	return out
}

func sanitizeMap(doc bson.M) map[string]any {
	row := make(map[string]any, len(doc))
	for k, v := range doc {
		row[k] = sanitizeValue(v)
	}
	return row
}

// sanitizeValue rewrites BSON-specific types (ObjectID, DateTime, nested
// documents) into JSON-encodable values.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case bson.M:
		return sanitizeMap(val)
	case bson.A:
		items := make([]any, 0, len(val))
		for _, item := range val {
			items = append(items, sanitizeValue(item))
		}
		return items
	default:
		return v
	}
}
