package tool

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPClientFactory_SSEClientKeepsStreamOpen(t *testing.T) {
	factory := NewMCPClientFactory()

	// a whole-request timeout would also cover reading the event stream
	assert.Zero(t, factory.sseClient.Timeout)

	tr, ok := factory.sseClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, responseHeaderTimeout, tr.ResponseHeaderTimeout)
	assert.NotNil(t, tr.DialContext)
}
