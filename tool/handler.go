package tool

import (
	"context"
	"fmt"

	"github.com/habiliai/mcpchat/router"
)

type (
	// Handler answers one line of user text.
	Handler interface {
		Name() string
		Invoke(ctx context.Context, text string) (string, error)
	}

	// Unavailable stands in for a category whose tool server is not connected.
	// Its reply is ordinary text so the conversation continues.
	Unavailable struct {
		Category router.Category
		Reason   string
	}
)

var (
	_ Handler = (*Unavailable)(nil)
)

func NewUnavailable(category router.Category, reason string) *Unavailable {
	return &Unavailable{
		Category: category,
		Reason:   reason,
	}
}

func (u *Unavailable) Name() string {
	return "unavailable/" + string(u.Category)
}

func (u *Unavailable) Invoke(_ context.Context, _ string) (string, error) {
	if u.Reason == "" {
		return fmt.Sprintf("tool unavailable: %s", u.Category), nil
	}
	return fmt.Sprintf("tool unavailable: %s (%s)", u.Category, u.Reason), nil
}
