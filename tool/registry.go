package tool

import (
	"sort"

	"github.com/habiliai/mcpchat/router"
	"github.com/samber/lo"
)

// Registry maps every routing category to the handler that serves it. It is
// built once and never changes afterwards.
type Registry struct {
	handlers map[router.Category]Handler
	direct   Handler
}

func NewRegistry(bindings map[router.Category]Handler, direct Handler) *Registry {
	handlers := make(map[router.Category]Handler, len(bindings))
	for category, handler := range bindings {
		if handler == nil || category == router.CategoryDirect {
			continue
		}
		handlers[category] = handler
	}

	return &Registry{
		handlers: handlers,
		direct:   direct,
	}
}

// Handler returns the handler of category. Unbound categories get an
// Unavailable handler.
func (r *Registry) Handler(category router.Category) Handler {
	if category == router.CategoryDirect {
		if r.direct == nil {
			return NewUnavailable(category, "no language model configured")
		}
		return r.direct
	}

	if h, ok := r.handlers[category]; ok {
		return h
	}
	return NewUnavailable(category, "")
}

// Available lists the bound tool categories in sorted order.
func (r *Registry) Available() []router.Category {
	categories := lo.Filter(lo.Keys(r.handlers), func(c router.Category, _ int) bool {
		_, unavailable := r.handlers[c].(*Unavailable)
		return !unavailable
	})
	sort.Slice(categories, func(i, j int) bool {
		return categories[i] < categories[j]
	})
	return categories
}
