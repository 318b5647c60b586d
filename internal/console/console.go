// Package console implements a line-based driver for the assistant
// operations. It stands in for the external voice pipeline during local
// development: one console run drives one conversation session.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/voicecart/internal/assistant"
	"github.com/xenking/voicecart/internal/domain/product"
)

const usage = `Commands:
  browse [category=<cat>] [max=<price>] [color=<color>] [kw=<word>]
  add "<product name>" [qty=<n>] [size=<s>]
  remove "<product name>" [size=<s>]
  cart
  checkout
  last
  order <id>
  help
  quit`

// Console drives one assistant session over a line-based protocol.
type Console struct {
	tools *assistant.Tools
	sess  *assistant.Session
	in    io.Reader
	out   io.Writer
}

// New creates a Console reading commands from in and writing responses to out.
func New(tools *assistant.Tools, sess *assistant.Session, in io.Reader, out io.Writer) *Console {
	return &Console{tools: tools, sess: sess, in: in, out: out}
}

// Run processes commands until EOF, a quit command, or context cancellation.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintf(c.out, "voicecart console, session %s\n%s\n", c.sess.ID, usage)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(c.out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out, "\nbye")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			quit, resp := c.dispatch(ctx, line)
			if resp != "" {
				fmt.Fprintln(c.out, resp)
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *Console) dispatch(ctx context.Context, line string) (quit bool, resp string) {
	args, err := tokenize(line)
	if err != nil {
		return false, err.Error()
	}
	if len(args) == 0 {
		return false, ""
	}

	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return true, "bye"
	case "help":
		return false, usage
	case "browse":
		return false, c.browse(ctx, rest)
	case "add":
		return false, c.add(ctx, rest)
	case "remove":
		return false, c.remove(rest)
	case "cart":
		return false, c.tools.ListCart(c.sess)
	case "checkout":
		return false, c.tools.CommitOrder(ctx, c.sess)
	case "last":
		return false, c.tools.GetLastOrder(ctx)
	case "order":
		if len(rest) != 1 {
			return false, "usage: order <id>"
		}
		return false, c.tools.GetOrderByID(ctx, rest[0])
	default:
		return false, fmt.Sprintf("unknown command %q\n%s", cmd, usage)
	}
}

func (c *Console) browse(ctx context.Context, args []string) string {
	var f product.Filter
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Sprintf("expected key=value, got %q", a)
		}
		switch key {
		case "category":
			f.Category = value
		case "max":
			max, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Sprintf("bad max price %q", value)
			}
			f.MaxPrice = max
		case "color":
			f.Color = value
		case "kw":
			f.Keyword = value
		default:
			return fmt.Sprintf("unknown filter %q", key)
		}
	}
	return c.tools.QueryCatalog(ctx, c.sess, f)
}

func (c *Console) add(ctx context.Context, args []string) string {
	name, qty, size, err := itemArgs(args)
	if err != nil {
		return err.Error()
	}
	return c.tools.AddToCart(ctx, c.sess, name, qty, size)
}

func (c *Console) remove(args []string) string {
	name, _, size, err := itemArgs(args)
	if err != nil {
		return err.Error()
	}
	return c.tools.RemoveFromCart(c.sess, name, size)
}

// itemArgs parses `"<name>" [qty=<n>] [size=<s>]`.
func itemArgs(args []string) (name string, qty int, size string, err error) {
	if len(args) == 0 {
		return "", 0, "", errors.New(`usage: add|remove "<product name>" [qty=<n>] [size=<s>]`)
	}
	name, qty = args[0], 1
	for _, a := range args[1:] {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return "", 0, "", errors.Errorf("expected key=value, got %q", a)
		}
		switch key {
		case "qty":
			qty, err = strconv.Atoi(value)
			if err != nil {
				return "", 0, "", errors.Errorf("bad quantity %q", value)
			}
		case "size":
			size = value
		default:
			return "", 0, "", errors.Errorf("unknown option %q", key)
		}
	}
	return name, qty, size, nil
}

// tokenize splits a command line into fields, honouring double quotes so
// product names with spaces stay one argument.
func tokenize(line string) ([]string, error) {
	var (
		args     []string
		current  strings.Builder
		inQuotes bool
		started  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case !inQuotes && (r == ' ' || r == '\t'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if inQuotes {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
