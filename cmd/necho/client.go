package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/client"
	"github.com/hasirciogluhq/necho/cmd/necho/internal/protocol"
)

var (
	clientTimeout time.Duration
	clientRaw     bool
)

var clientCmd = &cobra.Command{
	Use:   "client [host] [port]",
	Short: "Interactive N-Echo client",
	Long: `Connect to an N-Echo server and send requests interactively.
Enter the repeat count and then the message; type quit, exit or q to leave.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runClient,
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.Flags().DurationVar(&clientTimeout, "timeout", 10*time.Second, "Timeout for connecting and for each request")
	clientCmd.Flags().BoolVar(&clientRaw, "raw", false, "Print raw response lines instead of a summary")
}

func runClient(cmd *cobra.Command, args []string) error {
	host, port := "localhost", "5000"
	if len(args) > 0 {
		host = args[0]
	}
	if len(args) > 1 {
		if _, err := strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid port %q: must be a number", args[1])
		}
		port = args[1]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
	c, err := client.Dial(ctx, net.JoinHostPort(host, port))
	cancel()
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, color.GreenString("Connected to %s", c.RemoteAddr()))
	fmt.Fprintln(out, "\n=== N-Echo client ===")
	fmt.Fprintln(out, "Type 'quit' or 'exit' to leave.")
	fmt.Fprintln(out)

	return repl(cmd.Context(), c, bufio.NewReader(cmd.InOrStdin()), out)
}

func repl(ctx context.Context, c *client.Client, in *bufio.Reader, out io.Writer) error {
	for {
		fmt.Fprint(out, "Repeat count (n): ")
		nInput, err := readInput(in)
		if err != nil {
			return endOfInput(err, out)
		}
		if isQuit(nInput) {
			fmt.Fprintln(out, "Bye.")
			return nil
		}

		n, err := strconv.Atoi(nInput)
		if err != nil {
			fmt.Fprintln(out, color.RedString("[error] n must be an integer"))
			continue
		}
		if n <= 0 {
			fmt.Fprintln(out, color.RedString("[error] n must be a positive integer"))
			continue
		}

		fmt.Fprint(out, "Message: ")
		message, err := readInput(in)
		if err != nil {
			return endOfInput(err, out)
		}
		if message == "" {
			fmt.Fprintln(out, color.RedString("[error] message must not be empty"))
			continue
		}

		reqCtx, cancel := context.WithTimeout(ctx, clientTimeout)
		err = send(reqCtx, c, n, message, out)
		cancel()
		if err != nil {
			return err
		}
	}
}

func send(ctx context.Context, c *client.Client, n int, message string, out io.Writer) error {
	if clientRaw {
		line, err := client.EncodeRequest(n, message)
		if err != nil {
			return err
		}
		raw, err := c.Exchange(ctx, line)
		if err != nil {
			return err
		}
		out.Write(pretty.Color(pretty.Pretty([]byte(raw)), nil))
		return nil
	}

	resp, err := c.Send(ctx, n, message)
	if err != nil {
		return err
	}
	display(out, resp)
	return nil
}

func display(out io.Writer, resp protocol.Response) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(out, "\n"+rule)

	switch r := resp.(type) {
	case protocol.Success:
		fmt.Fprintln(out, color.GreenString("[success]"))
		fmt.Fprintf(out, "Repeat count: %d\n", r.N)
		fmt.Fprintln(out, "Echoes:")
		for i, echo := range r.Echoes {
			fmt.Fprintf(out, "  %d. %s\n", i+1, echo)
		}
	case protocol.Failure:
		fmt.Fprintln(out, color.RedString("[failed] %s", r.Message))
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out)
}

func readInput(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func endOfInput(err error, out io.Writer) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(out, "\nBye.")
		return nil
	}
	return err
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}
