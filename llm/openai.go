package llm

import (
	"context"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient talks to the OpenAI chat completions API or a compatible one (xAI, Groq).
type OpenAIClient struct {
	client      *goopenai.Client
	model       string
	maxTokens   int
	temperature float64
}

var (
	_ Client = (*OpenAIClient)(nil)
)

func NewOpenAIClient(apiKey, baseURL, model string, conf *config.ModelConfig) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "api key is required for model %s", model)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := goopenai.NewClient(opts...)

	return &OpenAIClient{
		client:      &client,
		model:       model,
		maxTokens:   conf.MaxTokens,
		temperature: conf.Temperature,
	}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	var messages []goopenai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, goopenai.SystemMessage(req.System))
	}
	messages = append(messages, goopenai.UserMessage(req.Prompt))

	params := goopenai.ChatCompletionNewParams{
		Model:    goopenai.ChatModel(c.model),
		Messages: messages,
	}
	if c.maxTokens > 0 {
		params.MaxTokens = goopenai.Int(int64(c.maxTokens))
	}
	if c.temperature != 0 {
		params.Temperature = goopenai.Float(c.temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(err, "failed to generate with %s", c.model)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Errorf("no choices in response from %s", c.model)
	}

	return resp.Choices[0].Message.Content, nil
}
