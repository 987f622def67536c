//go:build without_sqlite

package memory

import (
	"context"
	"log/slog"

	"github.com/habiliai/mcpchat/errors"
)

func OpenSqliteStore(_ context.Context, path string, _ Embedder, _ float64, _ *slog.Logger) (Store, error) {
	return nil, errors.Wrapf(errors.ErrInvalidConfig, "sqlite memory store is not available in this build (%s)", path)
}
