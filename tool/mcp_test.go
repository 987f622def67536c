package tool_test

import (
	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/tool"
)

func (s *TestSuite) TestMCPHandler_FirstToolAndRequiredArgument() {
	c := s.newInProcessClient(newMathServer())

	h, err := tool.NewMCPHandler(s, "math", c, config.ToolBinding{Category: "math", Server: "math"}, 0)
	s.Require().NoError(err)
	s.Equal("math/calculate", h.Name())
	s.Equal("expression", h.Argument())

	out, err := h.Invoke(s, "calculate 2+2")
	s.Require().NoError(err)
	s.Equal("result of calculate 2+2", out)
}

func (s *TestSuite) TestMCPHandler_ConfiguredTool() {
	c := s.newInProcessClient(newSearchServer())

	h, err := tool.NewMCPHandler(s, "websearch", c, config.ToolBinding{
		Category: "search",
		Server:   "websearch",
		Tool:     "search_web",
	}, 0)
	s.Require().NoError(err)
	s.Equal("q", h.Argument())

	out, err := h.Invoke(s, "latest news about Go")
	s.Require().NoError(err)
	s.Equal("results for latest news about Go", out)
}

func (s *TestSuite) TestMCPHandler_ConfiguredArgument() {
	c := s.newInProcessClient(newSearchServer())

	h, err := tool.NewMCPHandler(s, "websearch", c, config.ToolBinding{
		Category: "search",
		Server:   "websearch",
		Tool:     "search_web",
		Argument: "query",
	}, 0)
	s.Require().NoError(err)

	// the tool reads "q", so it sees an empty query
	out, err := h.Invoke(s, "golang")
	s.Require().NoError(err)
	s.Equal("results for", out)
}

func (s *TestSuite) TestMCPHandler_ToolError() {
	c := s.newInProcessClient(newSearchServer())

	h, err := tool.NewMCPHandler(s, "websearch", c, config.ToolBinding{
		Category: "search",
		Server:   "websearch",
		Tool:     "broken",
	}, 0)
	s.Require().NoError(err)

	_, err = h.Invoke(s, "anything")
	s.Require().ErrorIs(err, errors.ErrToolFailed)
	s.Contains(err.Error(), "quota exceeded")
}

func (s *TestSuite) TestMCPHandler_UnknownTool() {
	c := s.newInProcessClient(newMathServer())

	_, err := tool.NewMCPHandler(s, "math", c, config.ToolBinding{
		Category: "math",
		Server:   "math",
		Tool:     "integrate",
	}, 0)
	s.Require().ErrorIs(err, errors.ErrNotFound)
}
