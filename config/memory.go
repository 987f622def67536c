package config

const (
	MemoryBackendFile   = "file"
	MemoryBackendSqlite = "sqlite"

	EmbedderHash   = "hash"
	EmbedderOpenAI = "openai"
)

type MemoryConfig struct {
	// Backend selects the store implementation: "file" (JSON snapshot) or "sqlite" (sqlite-vec).
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty" jsonschema:"enum=file,enum=sqlite"`

	// Path is the snapshot location. It is overwritten after every turn.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Embedder selects the embedding model: "hash" (local) or "openai".
	Embedder       string `yaml:"embedder,omitempty" json:"embedder,omitempty" jsonschema:"enum=hash,enum=openai"`
	EmbeddingModel string `yaml:"embeddingModel,omitempty" json:"embeddingModel,omitempty"`

	// Dimension is only used by the hash embedder.
	Dimension int `yaml:"dimension,omitempty" json:"dimension,omitempty"`

	// TopK is the number of past documents added to the direct LLM prompt.
	TopK int `yaml:"topK,omitempty" json:"topK,omitempty"`

	// MinScore drops search results scored below it (0..1). 0 disables filtering.
	MinScore float64 `yaml:"minScore,omitempty" json:"minScore,omitempty"`
}

func NewMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		Backend:        MemoryBackendFile,
		Path:           "mcpchat_memory.json",
		Embedder:       EmbedderHash,
		EmbeddingModel: "text-embedding-3-small",
		Dimension:      256,
		TopK:           3,
		MinScore:       0,
	}
}
