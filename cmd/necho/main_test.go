package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/client"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/echo"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/listener"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/protocol"
)

func startTestServer(t *testing.T) *core.Server {
	t.Helper()

	srv := &core.Server{
		Config:  core.ServerConfig{BindAddress: "127.0.0.1", Port: 0, Backlog: 5},
		Binder:  listener.NewSocket(),
		Handler: echo.NewHandler(nil),
	}
	go func() { _ = srv.Start(context.Background()) }()
	t.Cleanup(srv.Stop)

	require.NoError(t, wait.PollUntilContextTimeout(context.Background(), 5*time.Millisecond, 5*time.Second, true,
		func(context.Context) (bool, error) {
			return srv.Accepting() && srv.Addr() != nil, nil
		}))
	return srv
}

func runRepl(t *testing.T, input string) string {
	t.Helper()

	srv := startTestServer(t)
	c, err := client.Dial(context.Background(), srv.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), c, bufio.NewReader(strings.NewReader(input)), &out))
	return out.String()
}

func TestReplEchoes(t *testing.T) {
	out := runRepl(t, "3\nhi\nq\n")

	assert.Contains(t, out, "[success]")
	assert.Contains(t, out, "Repeat count: 3")
	assert.Contains(t, out, "  1. hi\n")
	assert.Contains(t, out, "  3. hi\n")
	assert.Contains(t, out, "Bye.")
}

func TestReplValidatesLocally(t *testing.T) {
	out := runRepl(t, "zero\n0\n2\n\nexit\n")

	assert.Contains(t, out, "[error] n must be an integer")
	assert.Contains(t, out, "[error] n must be a positive integer")
	assert.Contains(t, out, "[error] message must not be empty")
	assert.NotContains(t, out, "[success]")
}

func TestReplStopsAtEndOfInput(t *testing.T) {
	out := runRepl(t, "2\nlast")
	assert.Contains(t, out, "  2. last\n")
	assert.Contains(t, out, "Bye.")
}

func TestDisplayFailure(t *testing.T) {
	var out bytes.Buffer
	display(&out, protocol.Failure{Message: "message must not be empty"})
	assert.Contains(t, out.String(), "[failed] message must not be empty")
}

func TestServeRejectsBadPortArgument(t *testing.T) {
	t.Setenv("NECHO_PORT", "")
	err := runServe(serveCmd, []string{"not-a-port"})
	assert.Error(t, err)
}
