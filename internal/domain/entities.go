package domain

// Payload keys present on every stored point.
const (
	PayloadText        = "text"
	PayloadSourceFile  = "source_file"
	PayloadChunkIndex  = "chunk_index"
	PayloadTotalChunks = "total_chunks"
)

// Distance is the similarity metric of a collection. It is fixed at
// collection creation time.
type Distance string

const (
	DistanceCosine Distance = "cosine"
	DistanceDot    Distance = "dot"
	DistanceEuclid Distance = "euclid"
)

// ParseDistance maps a config/CLI string to a Distance. The empty string
// selects cosine.
func ParseDistance(s string) (Distance, bool) {
	switch Distance(s) {
	case DistanceCosine, DistanceDot, DistanceEuclid:
		return Distance(s), true
	case "":
		return DistanceCosine, true
	}
	return "", false
}

// Point is one stored index entry: a vector plus its payload, keyed by a
// collection-unique id.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Filter is a conjunction of payload field equality predicates.
type Filter map[string]any

// SearchResult is a scored match returned by a vector search.
type SearchResult struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Text returns the chunk text stored in the payload.
func (r SearchResult) Text() string {
	s, _ := r.Payload[PayloadText].(string)
	return s
}

// SourceFile returns the originating file name stored in the payload.
func (r SearchResult) SourceFile() string {
	s, _ := r.Payload[PayloadSourceFile].(string)
	return s
}

// CollectionInfo describes a named collection.
type CollectionInfo struct {
	Name      string
	Count     int
	Dimension int
	Metric    Distance
}
