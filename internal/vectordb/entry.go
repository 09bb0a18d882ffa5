package vectordb

// Entry represents a document chunk to be stored and searched.
type Entry struct {
	ID   string
	Text string
	Metadata
}

// Metadata holds the source attribution of a chunk.
type Metadata struct {
	Source      string // filename or URL of the owning document
	Page        int    // 1-based page the chunk starts on; 0 when unknown
	ChunkIndex  int    // position within the document's chunk sequence
	ContentHash string // sha256 of the chunk text, hex
}

// SearchResult pairs an entry with its cosine similarity to the query.
// Higher is better; the range is [-1, 1] and in practice [0, 1].
type SearchResult struct {
	Entry
	Similarity float32
}
