package schema

type ChunkType string

const (
	ChunkTypeText          ChunkType = "text"
	ChunkTypeCode          ChunkType = "code"
	ChunkTypeMixed         ChunkType = "mixed"
	ChunkTypeSectionHeader ChunkType = "section_header"
	ChunkTypeRequirement   ChunkType = "requirement"
	ChunkTypeChecklist     ChunkType = "checklist"
	ChunkTypeTable         ChunkType = "table"
)

// Split strategies recorded on chunks that came out of an oversized unit.
const (
	SplitDeclarations = "declarations"
	SplitLines        = "lines"
	SplitMarkers      = "markers"
	SplitTokens       = "tokens"
	SplitSegments     = "segments"
)

// Chunk is a bounded unit of a document ready for embedding.
type Chunk struct {
	ID                string        `json:"chunk_id"`
	Content           string        `json:"content"`
	TokenCount        int           `json:"token_count"`
	Type              ChunkType     `json:"chunk_type"`
	Index             int           `json:"chunk_index"`
	TotalChunks       int           `json:"total_chunks"`
	PrevID            string        `json:"prev_chunk_id,omitempty"`
	NextID            string        `json:"next_chunk_id,omitempty"`
	OverlapPrev       string        `json:"overlap_prev,omitempty"`
	OverlapNext       string        `json:"overlap_next,omitempty"`
	OverlapTokenCount int           `json:"overlap_token_count"`
	Metadata          ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	SourceID        string        `json:"source_id,omitempty"`
	Section         string        `json:"section,omitempty"`
	SectionPath     []string      `json:"section_path,omitempty"`
	BlockStart      int           `json:"block_start"`
	BlockEnd        int           `json:"block_end"`
	LineStart       int           `json:"line_start,omitempty"`
	LineEnd         int           `json:"line_end,omitempty"`
	HasCode         bool          `json:"has_code"`
	CodeLanguages   []string      `json:"code_languages,omitempty"`
	ExampleTypes    []ExampleType `json:"example_types,omitempty"`
	PatternEvidence []string      `json:"pattern_evidence,omitempty"`
	Continues       bool          `json:"continues,omitempty"`
	Part            int           `json:"part,omitempty"`
	Parts           int           `json:"parts,omitempty"`
	SplitStrategy   string        `json:"split_strategy,omitempty"`
	BudgetExceeded  bool          `json:"budget_exceeded"`
	ForcedSplit     bool          `json:"forced_split,omitempty"`
	EncodingModel   string        `json:"encoding_model,omitempty"`
}

// IsCodePart reports whether the chunk is one piece of a code block split in several.
func (c Chunk) IsCodePart() bool {
	return c.Metadata.Parts > 1
}

// Language returns the first code language of the chunk, if any.
func (c Chunk) Language() string {
	if len(c.Metadata.CodeLanguages) == 0 {
		return ""
	}
	return c.Metadata.CodeLanguages[0]
}
