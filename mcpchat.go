package mcpchat

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/habiliai/mcpchat/chat"
	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/mylog"
	"github.com/habiliai/mcpchat/llm"
	"github.com/habiliai/mcpchat/memory"
	"github.com/habiliai/mcpchat/router"
	"github.com/habiliai/mcpchat/server"
	"github.com/habiliai/mcpchat/tool"
)

type (
	// Chat is a fully wired chat session: memory, router, tools and model.
	Chat struct {
		config       *config.Config
		logger       *slog.Logger
		store        memory.Store
		embedder     memory.Embedder
		llmClient    llm.Client
		toolManager  *tool.Manager
		handlers     map[router.Category]tool.Handler
		orchestrator *chat.Orchestrator
		ownsStore    bool
	}
	Option func(*Chat)
)

func NewChat(ctx context.Context, optionFuncs ...Option) (*Chat, error) {
	c := &Chat{
		config: config.NewConfig(),
	}
	for _, f := range optionFuncs {
		f(c)
	}

	if c.logger == nil {
		c.logger = mylog.NewLoggerFromConfig(&c.config.Log)
	}

	if c.llmClient == nil {
		if err := c.config.Validate(); err != nil {
			return nil, err
		}
	} else {
		if err := c.config.Memory.Validate(); err != nil {
			return nil, err
		}
		if err := c.config.Tool.Validate(); err != nil {
			return nil, err
		}
	}

	var err error
	if c.llmClient == nil {
		if c.llmClient, err = llm.NewClient(&c.config.Model); err != nil {
			return nil, err
		}
	}

	if c.store == nil {
		if c.embedder == nil {
			if c.embedder, err = memory.NewEmbedder(&c.config.Memory, c.config.Model.OpenAIAPIKey); err != nil {
				return nil, err
			}
		}
		if c.store, err = memory.Open(ctx, &c.config.Memory, c.embedder, c.logger); err != nil {
			return nil, errors.Wrapf(err, "failed to open memory at %s", c.config.Memory.Path)
		}
		c.ownsStore = true
	}

	// configured bindings fill only the categories not given by options
	c.toolManager = tool.NewManager(c.logger)
	c.toolManager.ConnectAll(ctx, &c.config.Tool)
	bindings := c.toolManager.Handlers(ctx, c.config.Tool.Bindings)
	for category, handler := range c.handlers {
		bindings[category] = handler
	}

	registry := tool.NewRegistry(
		bindings,
		tool.NewDirectLLMHandler(c.llmClient, c.store, c.config.Model.System, c.config.Memory.TopK),
	)
	c.logger.Info("tools ready", "available", registry.Available(), "documents", c.store.Len())

	session := chat.NewSession(c.store, router.New(c.config.Router.Keywords), registry, c.logger)
	c.orchestrator = chat.NewOrchestrator(session)

	return c, nil
}

func (c *Chat) Orchestrator() *chat.Orchestrator {
	return c.orchestrator
}

func (c *Chat) Store() memory.Store {
	return c.store
}

func (c *Chat) Config() *config.Config {
	return c.config
}

// Run is the interactive loop on in and out.
func (c *Chat) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	return c.orchestrator.Run(ctx, in, out)
}

func (c *Chat) Handler() http.Handler {
	return server.NewHandler(c.orchestrator, c.logger)
}

// Close saves the memory and releases the tool servers.
func (c *Chat) Close() {
	c.orchestrator.Shutdown(context.Background())
	c.toolManager.Close()
	if c.ownsStore {
		if err := c.store.Close(); err != nil {
			c.logger.Warn("failed to close memory", "err", err)
		}
	}
}

func WithConfig(conf *config.Config) Option {
	return func(c *Chat) {
		c.config = conf
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Chat) {
		c.logger = logger
	}
}

func WithStore(store memory.Store) Option {
	return func(c *Chat) {
		c.store = store
	}
}

func WithEmbedder(embedder memory.Embedder) Option {
	return func(c *Chat) {
		c.embedder = embedder
	}
}

func WithLLMClient(client llm.Client) Option {
	return func(c *Chat) {
		c.llmClient = client
	}
}

// WithHandler binds category to handler, replacing any configured binding.
func WithHandler(category router.Category, handler tool.Handler) Option {
	return func(c *Chat) {
		if c.handlers == nil {
			c.handlers = make(map[router.Category]tool.Handler)
		}
		c.handlers[category] = handler
	}
}

func WithMemoryPath(path string) Option {
	return func(c *Chat) {
		c.config.Memory.Path = path
	}
}
