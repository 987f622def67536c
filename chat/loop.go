package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/habiliai/mcpchat/errors"
)

const maxLineSize = 1 << 20

// Run reads lines from in until an exit command, the end of input or ctx
// cancellation. Every way out persists the memory first.
func (o *Orchestrator) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	// stops the reader once Run returns, even when ctx lives on
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if _, err := fmt.Fprint(out, "\nYou: "); err != nil {
			return errors.Wrapf(err, "failed to write prompt")
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			writeReply(out, o.Shutdown(ctx))
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			writeReply(out, o.Shutdown(ctx))
			select {
			case err := <-readErr:
				if err != nil {
					return errors.Wrapf(err, "failed to read input")
				}
			default:
			}
			return nil
		}

		reply, err := o.HandleLine(ctx, line)
		if err != nil {
			return err
		}
		writeReply(out, reply)
		if reply.Kind == ReplyExit {
			return nil
		}
	}
}

func writeReply(out io.Writer, reply Reply) {
	switch reply.Kind {
	case ReplyIgnored:
		return
	case ReplyAnswer:
		fmt.Fprintf(out, "\nAssistant: %s\n", reply.Text)
	case ReplyError:
		fmt.Fprintf(out, "\nAssistant: error: %s\n", reply.Text)
	case ReplyCleared, ReplyExit:
		fmt.Fprintln(out, reply.Text)
	}
	if reply.Warning != "" {
		fmt.Fprintf(out, "warning: %s\n", reply.Warning)
	}
}
