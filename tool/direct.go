package tool

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/llm"
	"github.com/habiliai/mcpchat/memory"
)

var (
	//go:embed data/direct_prompt.md.tmpl
	directPromptTmpl     string
	directPromptTemplate = template.Must(template.New("direct_prompt").Funcs(funcMap()).Parse(directPromptTmpl))
)

func funcMap() template.FuncMap {
	return sprig.TxtFuncMap()
}

type (
	// DirectLLMHandler answers with the language model, adding the most similar
	// past turns to the prompt.
	DirectLLMHandler struct {
		client llm.Client
		store  memory.Store
		system string
		topK   int
	}

	DirectPromptValues struct {
		Input   string
		Context []memory.ScoredDocument
	}
)

var (
	_ Handler = (*DirectLLMHandler)(nil)
)

func NewDirectLLMHandler(client llm.Client, store memory.Store, system string, topK int) *DirectLLMHandler {
	return &DirectLLMHandler{
		client: client,
		store:  store,
		system: system,
		topK:   topK,
	}
}

func (h *DirectLLMHandler) Name() string {
	return "llm"
}

func (h *DirectLLMHandler) Invoke(ctx context.Context, text string) (string, error) {
	related, err := h.store.Search(ctx, text, h.topK)
	if err != nil {
		return "", errors.Wrapf(err, "failed to search memory")
	}

	prompt, err := RenderDirectPrompt(DirectPromptValues{
		Input:   text,
		Context: related,
	})
	if err != nil {
		return "", err
	}

	reply, err := h.client.Generate(ctx, llm.Request{
		System: h.system,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}

	return reply, nil
}

func RenderDirectPrompt(values DirectPromptValues) (string, error) {
	var buf bytes.Buffer
	if err := directPromptTemplate.Execute(&buf, values); err != nil {
		return "", errors.Wrapf(err, "failed to execute direct prompt template")
	}
	return strings.TrimSpace(buf.String()), nil
}
