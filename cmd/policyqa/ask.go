package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/policyqa/internal/app"
	"github.com/ternarybob/policyqa/internal/common"
	"github.com/ternarybob/policyqa/internal/controller"
	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/services/transform"
	"github.com/ternarybob/policyqa/internal/view"
)

// Exit codes for the ask command
const (
	exitOK       = 0
	exitFailed   = 1
	exitRejected = 2
)

const (
	prompt             = "> "
	continuationPrompt = "... "
)

// runAsk answers one question from the arguments, or reads questions from
// stdin until EOF when none is given
func runAsk(config *common.Config, args []string) int {
	logger := common.NewQuietLogger("warn")

	client, err := app.NewQAClient(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitFailed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newAsker(client, transform.NewService(logger), config.Render.RawSourceMarkup, logger, os.Stdout, os.Stderr)

	if len(args) > 0 {
		return a.askOnce(ctx, strings.Join(args, " "))
	}

	if err := a.interactive(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitFailed
	}
	return exitOK
}

// asker drives a controller against a terminal surface
type asker struct {
	model      *view.Model
	text       *view.Text
	controller *controller.QueryController
	out        io.Writer
	errOut     io.Writer
}

func newAsker(client interfaces.QAClient, transformService *transform.Service, rawMarkup bool, logger arbor.ILogger, out, errOut io.Writer) *asker {
	model := view.NewModel()
	text := view.NewText(transformService, rawMarkup, errOut)
	model.SetListener(text.Listen)

	return &asker{
		model:      model,
		text:       text,
		controller: controller.NewQueryController(client, model, logger),
		out:        out,
		errOut:     errOut,
	}
}

// askOnce runs a single cycle as if the submit button were clicked
func (a *asker) askOnce(ctx context.Context, question string) int {
	a.model.SetQuestionText(question)
	return a.report(a.controller.Click(ctx))
}

// interactive reads questions line by line. A line ending in a backslash
// continues the question on the next line.
func (a *asker) interactive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	var pending []string

	fmt.Fprint(a.out, prompt)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasSuffix(line, `\`) {
			pending = append(pending, strings.TrimSuffix(line, `\`))
			fmt.Fprint(a.out, continuationPrompt)
			continue
		}

		question := strings.Join(append(pending, line), "\n")
		pending = nil

		a.model.SetQuestionText(question)
		if cycle, submitted := a.controller.KeyPress(ctx, controller.KeyEnter, false); submitted {
			a.report(cycle)
		}

		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(a.out, prompt)
	}

	fmt.Fprintln(a.out)
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read question: %w", err)
	}
	return nil
}

// report prints the outcome of a cycle and returns its exit code
func (a *asker) report(cycle controller.Cycle) int {
	switch cycle.Outcome {
	case controller.OutcomeRejected:
		fmt.Fprintln(a.errOut, a.model.TakeAlert())
		return exitRejected
	case controller.OutcomeFailed:
		fmt.Fprint(a.out, a.text.Render(a.model.Snapshot()))
		return exitFailed
	default:
		fmt.Fprint(a.out, a.text.Render(a.model.Snapshot()))
		return exitOK
	}
}
