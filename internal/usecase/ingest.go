package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"lawrag/internal/adapter/fs"
	"lawrag/internal/adapter/segmenter"
	"lawrag/internal/domain"
	"lawrag/internal/port"
)

// IDScheme selects how ingested points are keyed.
type IDScheme string

const (
	// IDRandom generates a fresh uuid4 per chunk on every run. Re-ingesting
	// an unchanged source therefore produces duplicate entries.
	IDRandom IDScheme = "random"

	// IDDeterministic derives the id from (source_file, chunk_index), making
	// re-ingestion overwrite instead of duplicate.
	IDDeterministic IDScheme = "deterministic"
)

// Ingestor turns documents into persisted index entries: segment, embed in
// batches, pair each vector with its payload and id, upsert.
type Ingestor struct {
	embedder   port.Embedder
	store      port.VectorStore
	collection string
	chunkSize  int
	overlap    int
	idScheme   IDScheme
	walker     *fs.Walker
}

// IngestorOptions configures an Ingestor.
type IngestorOptions struct {
	Collection string
	ChunkSize  int // default 500
	Overlap    int // 0 is valid; negative selects the default 50
	IDScheme   IDScheme
	Includes   []string // walk patterns, default **/*.txt
}

// NewIngestor wires an ingestion pipeline over the given embedder and store.
func NewIngestor(embedder port.Embedder, store port.VectorStore, opts IngestorOptions) *Ingestor {
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = 500
	}
	overlap := opts.Overlap
	if overlap < 0 {
		overlap = 50
	}
	scheme := opts.IDScheme
	if scheme == "" {
		scheme = IDRandom
	}
	return &Ingestor{
		embedder:   embedder,
		store:      store,
		collection: opts.Collection,
		chunkSize:  chunkSize,
		overlap:    overlap,
		idScheme:   scheme,
		walker:     fs.NewWalker(opts.Includes),
	}
}

// IngestText segments text, embeds the chunks and upserts one point per
// chunk. sourceFile is recorded in every payload; metadata is merged in, with
// the reserved payload keys taking precedence. Returns the number of entries
// written.
//
// There is no rollback: a failure partway through leaves already-upserted
// batches committed.
func (g *Ingestor) IngestText(ctx context.Context, text, sourceFile string, metadata map[string]any) (int, error) {
	chunks, err := segmenter.Segment(text, g.chunkSize, g.overlap)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: %s contains no ingestable text", domain.ErrEmptyInput, sourceFile)
	}

	vectors, err := g.embedder.Encode(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	points := make([]domain.Point, len(chunks))
	for i, chunk := range chunks {
		payload := make(map[string]any, len(metadata)+4)
		for k, v := range metadata {
			payload[k] = v
		}
		payload[domain.PayloadText] = chunk
		payload[domain.PayloadSourceFile] = sourceFile
		payload[domain.PayloadChunkIndex] = i
		payload[domain.PayloadTotalChunks] = len(chunks)

		points[i] = domain.Point{
			ID:      g.pointID(sourceFile, i),
			Vector:  vectors[i],
			Payload: payload,
		}
	}

	if err := g.store.Upsert(ctx, g.collection, points); err != nil {
		return 0, fmt.Errorf("upsert failed: %w", err)
	}
	return len(points), nil
}

func (g *Ingestor) pointID(sourceFile string, chunkIndex int) string {
	if g.idScheme == IDDeterministic {
		key := fmt.Sprintf("lawrag://%s/%d", sourceFile, chunkIndex)
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
	}
	return uuid.NewString()
}

// IngestFile reads one text file (with legacy-encoding fallback) and ingests
// it. The payload's source_file is the base name of the path.
func (g *Ingestor) IngestFile(ctx context.Context, path string, metadata map[string]any) (int, error) {
	content, err := fs.ReadTextFile(path)
	if err != nil {
		return 0, err
	}
	return g.IngestText(ctx, content, filepath.Base(path), metadata)
}

// IngestResult reports a directory ingestion. Failed files are recorded and
// do not stop the remaining files.
type IngestResult struct {
	FilesProcessed int
	FilesFailed    int
	EntriesWritten int
	Errors         []string
}

// ProgressFunc reports directory ingestion progress to the caller.
type ProgressFunc func(done, total int, currentFile string)

// IngestDir ingests every matching text file under dir. Per-file failures
// are collected into the result; the error return is reserved for failures
// to enumerate files at all.
func (g *Ingestor) IngestDir(ctx context.Context, dir string, metadata map[string]any, progress ProgressFunc) (*IngestResult, error) {
	files, err := g.walker.Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no text files found under %s", domain.ErrEmptyInput, dir)
	}

	result := &IngestResult{}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		count, err := g.IngestFile(ctx, path, metadata)
		if err != nil {
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		} else {
			result.FilesProcessed++
			result.EntriesWritten += count
		}
		if progress != nil {
			progress(i+1, len(files), path)
		}
	}
	return result, nil
}
