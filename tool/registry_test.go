package tool_test

import (
	"github.com/habiliai/mcpchat/router"
	"github.com/habiliai/mcpchat/tool"
)

func (s *TestSuite) TestRegistry() {
	c := s.newInProcessClient(newMathServer())
	math, err := tool.NewMCPHandler(s, "math", c, defaultBinding("math"), 0)
	s.Require().NoError(err)

	direct := &fakeLLM{reply: "hello"}
	registry := tool.NewRegistry(map[router.Category]tool.Handler{
		router.CategoryMath:  math,
		router.CategoryMusic: tool.NewUnavailable(router.CategoryMusic, "music is not available"),
	}, tool.NewDirectLLMHandler(direct, newStore(s), "", 3))

	s.Same(math, registry.Handler(router.CategoryMath))
	s.Equal("llm", registry.Handler(router.CategoryDirect).Name())
	s.Equal([]router.Category{router.CategoryMath}, registry.Available())

	s.Run("unbound category is unavailable", func() {
		out, err := registry.Handler(router.CategoryMail).Invoke(s, "check my email")
		s.Require().NoError(err)
		s.Equal("tool unavailable: mail", out)
	})

	s.Run("failed server is unavailable with reason", func() {
		out, err := registry.Handler(router.CategoryMusic).Invoke(s, "play a song")
		s.Require().NoError(err)
		s.Equal("tool unavailable: music (music is not available)", out)
	})

	s.Run("no language model", func() {
		out, err := tool.NewRegistry(nil, nil).Handler(router.CategoryDirect).Invoke(s, "hi")
		s.Require().NoError(err)
		s.Contains(out, "tool unavailable: direct")
	})
}
