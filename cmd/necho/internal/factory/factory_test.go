package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/config"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/echo"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/listener"
)

func testConfig(mode config.ListenerMode) *config.Config {
	return &config.Config{
		LogFormat:        "text",
		Host:             "127.0.0.1",
		Port:             0,
		Backlog:          8,
		ListenerMode:     mode,
		MaxLineBytes:     4096,
		MaxResponseBytes: 8192,
		IdleTimeout:      time.Minute,
	}
}

func TestListenerFactory(t *testing.T) {
	binder, err := NewListenerFactory(testConfig(config.ListenerModeSocket)).Create()
	require.NoError(t, err)
	assert.IsType(t, &listener.Socket{}, binder)

	binder, err = NewListenerFactory(testConfig(config.ListenerModeStandard)).Create()
	require.NoError(t, err)
	assert.IsType(t, &listener.Standard{}, binder)

	_, err = NewListenerFactory(testConfig("bogus")).Create()
	assert.Error(t, err)
}

func TestServerFactory(t *testing.T) {
	srv, err := NewServerFactory(testConfig(config.ListenerModeStandard)).Create()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", srv.Config.BindAddress)
	assert.Equal(t, 8, srv.Config.Backlog)
	assert.Equal(t, 4096, srv.MaxLineBytes)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
	handler, ok := srv.Handler.(*echo.Handler)
	require.True(t, ok)
	assert.Equal(t, 8192, handler.MaxResponseBytes)
	assert.NotNil(t, srv.Events)
}
