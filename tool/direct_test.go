package tool_test

import (
	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/memory"
	"github.com/habiliai/mcpchat/tool"
)

func newStore(s *TestSuite) memory.Store {
	store, err := memory.OpenFileStore(s, s.TempPath("memory.json"), memory.NewHashEmbedder(512), 0, s.Logger)
	s.Require().NoError(err)
	return store
}

func defaultBinding(category string) config.ToolBinding {
	return config.ToolBinding{Category: category, Server: category}
}

func (s *TestSuite) TestDirectLLMHandler() {
	store := newStore(s)
	_, err := store.Add(s, "my favourite colour is green", memory.SourceUser)
	s.Require().NoError(err)
	_, err = store.Add(s, "noted, green it is", memory.SourceAssistant)
	s.Require().NoError(err)

	fake := &fakeLLM{reply: "Your favourite colour is green."}
	h := tool.NewDirectLLMHandler(fake, store, "be brief", 3)

	out, err := h.Invoke(s, "what is my favourite colour?")
	s.Require().NoError(err)
	s.Equal("Your favourite colour is green.", out)

	s.Require().Len(fake.requests, 1)
	req := fake.requests[0]
	s.Equal("be brief", req.System)
	s.Contains(req.Prompt, "what is my favourite colour?")
	s.Contains(req.Prompt, "Context from past conversation:")
	s.Contains(req.Prompt, "my favourite colour is green")
	s.Contains(req.Prompt, "noted, green it is")
}

func (s *TestSuite) TestDirectLLMHandler_EmptyMemory() {
	fake := &fakeLLM{reply: "hi"}
	h := tool.NewDirectLLMHandler(fake, newStore(s), "", 3)

	_, err := h.Invoke(s, "hello")
	s.Require().NoError(err)
	s.Require().Len(fake.requests, 1)
	s.Equal("hello", fake.requests[0].Prompt)
}

func (s *TestSuite) TestDirectLLMHandler_Error() {
	fake := &fakeLLM{err: errors.New("rate limited")}
	h := tool.NewDirectLLMHandler(fake, newStore(s), "", 3)

	_, err := h.Invoke(s, "hello")
	s.Require().Error(err)
	s.Contains(err.Error(), "rate limited")
}
