package memory

import (
	"context"

	"github.com/habiliai/mcpchat/errors"
	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var knownDimensions = map[string]int{
	goopenai.EmbeddingModelTextEmbedding3Small: 1536,
	goopenai.EmbeddingModelTextEmbedding3Large: 3072,
	goopenai.EmbeddingModelTextEmbeddingAda002: 1536,
}

// OpenAIEmbedder implements Embedder with the OpenAI embeddings API
type OpenAIEmbedder struct {
	client *goopenai.Client
	model  string
	dim    int
}

var (
	_ Embedder = (*OpenAIEmbedder)(nil)
)

func NewOpenAIEmbedder(apiKey, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "openai api key is required for embeddings")
	}
	dim, ok := knownDimensions[model]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown embedding model %q", model)
	}

	client := goopenai.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &OpenAIEmbedder{
		client: &client,
		model:  model,
		dim:    dim,
	}, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dim
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := goopenai.EmbeddingNewParams{
		Input:          goopenai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          e.model,
		EncodingFormat: goopenai.EmbeddingNewParamsEncodingFormatFloat,
	}

	embRes, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create embeddings")
	}
	if len(embRes.Data) != len(texts) {
		return nil, errors.Errorf("expected %d embeddings, got %d", len(texts), len(embRes.Data))
	}

	embeddings := make([][]float32, len(texts))
	for _, emb := range embRes.Data {
		embedding := make([]float32, len(emb.Embedding))
		for i, val := range emb.Embedding {
			embedding[i] = float32(val)
		}
		embeddings[emb.Index] = embedding
	}

	return embeddings, nil
}
