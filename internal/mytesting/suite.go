package mytesting

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/mylog"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
)

// testTimeout bounds every test so a stuck MCP server cannot hang the run.
const testTimeout = 30 * time.Second

type Suite struct {
	suite.Suite
	context.Context

	Cancel context.CancelFunc
	Logger *slog.Logger
}

func (s *Suite) SetupTest() {
	projectRoot, err := findProjectRoot()
	s.Require().NoError(err, "Failed to find project root")

	// .env only carries live credentials, so it is optional
	if envFile := filepath.Join(projectRoot, ".env"); fileExists(envFile) {
		s.Require().NoError(godotenv.Load(envFile))
	}

	s.Logger = mylog.Discard()
	if level := os.Getenv("MCPCHAT_TEST_LOG"); level != "" {
		s.Logger = mylog.New(os.Stderr, level, "text")
	}

	s.Context, s.Cancel = context.WithTimeout(context.Background(), testTimeout)
}

func (s *Suite) TearDownTest() {
	s.Cancel()
}

// TempPath returns a path named name inside a per-test temporary directory.
func (s *Suite) TempPath(name string) string {
	return filepath.Join(s.T().TempDir(), name)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// findProjectRoot walks up from this file to the directory holding go.mod.
func findProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(errors.ErrNotFound, "go.mod above %s", filename)
		}
		dir = parent
	}
}
