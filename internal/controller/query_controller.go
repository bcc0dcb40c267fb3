// Package controller binds submit actions on a surface to ask cycles
// against the question-answering service.
package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/models"
)

const (
	// EmptyQuestionAlert is shown when a blank question is submitted
	EmptyQuestionAlert = "Please enter a question."
	// FailurePrefix precedes the error message in the answer area
	FailurePrefix = "Failed to get an answer. Error: "
	// KeyEnter is the key name that submits from the question input
	KeyEnter = "Enter"
)

// ErrEmptyQuestion is returned for a blank question; no request is made
var ErrEmptyQuestion = errors.New("question is empty")

// Outcome is how an ask cycle ended
type Outcome string

const (
	OutcomeRejected Outcome = "rejected" // blank question, nothing sent
	OutcomeAnswered Outcome = "answered"
	OutcomeFailed   Outcome = "failed"
	OutcomeStale    Outcome = "stale" // superseded by a newer cycle, result discarded
)

// Cycle reports one ask cycle. Seq is zero for rejected cycles.
type Cycle struct {
	Seq      uint64
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// QueryController runs ask cycles for one surface. Each cycle takes a
// sequence number; only the most recently started cycle may render and
// restore the controls.
type QueryController struct {
	client  interfaces.QAClient
	surface interfaces.Surface
	logger  arbor.ILogger

	// mu orders cycle start against cycle finish so a stale check and the
	// render that follows it cannot interleave with a newer cycle starting
	mu  sync.Mutex
	seq atomic.Uint64
}

// NewQueryController creates a controller driving surface with answers from client
func NewQueryController(client interfaces.QAClient, surface interfaces.Surface, logger arbor.ILogger) *QueryController {
	return &QueryController{
		client:  client,
		surface: surface,
		logger:  logger,
	}
}

// LatestSeq returns the sequence number of the most recently started cycle
func (c *QueryController) LatestSeq() uint64 {
	return c.seq.Load()
}

// Click handles a click on the submit control
func (c *QueryController) Click(ctx context.Context) Cycle {
	return c.AskQuestion(ctx)
}

// KeyPress handles a key press in the question input. Only Enter without
// shift submits; the second return value reports whether a cycle ran.
func (c *QueryController) KeyPress(ctx context.Context, key string, shift bool) (Cycle, bool) {
	if key != KeyEnter || shift {
		return Cycle{}, false
	}
	return c.AskQuestion(ctx), true
}

// AskQuestion runs one ask cycle with the surface's current question text
func (c *QueryController) AskQuestion(ctx context.Context) Cycle {
	question, ok := models.NormalizeQuestion(c.surface.QuestionText())
	if !ok {
		c.surface.Alert(EmptyQuestionAlert)
		c.logger.Debug().Msg("Rejected empty question")
		return Cycle{Outcome: OutcomeRejected, Err: ErrEmptyQuestion}
	}

	start := time.Now()
	seq := c.begin()

	c.logger.Debug().
		Int64("seq", int64(seq)).
		Int("question_length", len(question)).
		Msg("Ask cycle started")

	result, err := c.client.Ask(ctx, question)

	cycle := c.finish(seq, result, err)
	cycle.Duration = time.Since(start)

	switch cycle.Outcome {
	case OutcomeFailed:
		c.logger.Error().
			Err(err).
			Int64("seq", int64(seq)).
			Dur("duration", cycle.Duration).
			Msg("Failed to get an answer")
	case OutcomeStale:
		c.logger.Debug().
			Int64("seq", int64(seq)).
			Int64("latest_seq", int64(c.LatestSeq())).
			Dur("duration", cycle.Duration).
			Msg("Discarded superseded ask cycle")
	default:
		c.logger.Info().
			Int64("seq", int64(seq)).
			Int("sources", len(result.SourceBlocks())).
			Dur("duration", cycle.Duration).
			Msg("Answer rendered")
	}

	return cycle
}

// begin takes the next sequence number and shows the in-progress state
func (c *QueryController) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.seq.Add(1)
	c.surface.SetResponseVisible(false)
	c.surface.SetLoadingVisible(true)
	c.surface.SetSubmitEnabled(false)
	return seq
}

// finish renders the result or error and restores the controls, unless a
// newer cycle has started since seq
func (c *QueryController) finish(seq uint64, result *models.AnswerResult, err error) Cycle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq.Load() != seq {
		return Cycle{Seq: seq, Outcome: OutcomeStale, Err: err}
	}

	defer func() {
		c.surface.SetLoadingVisible(false)
		c.surface.SetSubmitEnabled(true)
	}()

	if err != nil {
		c.displayError(err)
		return Cycle{Seq: seq, Outcome: OutcomeFailed, Err: err}
	}

	c.displayResponse(result)
	return Cycle{Seq: seq, Outcome: OutcomeAnswered}
}

// DisplayResponse renders result into the response area and shows it.
// Rendering the same result again leaves the same display.
func (c *QueryController) DisplayResponse(result *models.AnswerResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayResponse(result)
}

func (c *QueryController) displayResponse(result *models.AnswerResult) {
	c.surface.SetAnswerText(result.DisplayAnswer())
	c.surface.ClearSources()

	blocks := result.SourceBlocks()
	if len(blocks) == 0 {
		c.surface.ShowSourcesPlaceholder(models.NoSourcesPlaceholder)
	} else {
		for _, block := range blocks {
			c.surface.AppendSource(block)
		}
	}

	c.surface.SetResponseVisible(true)
}

func (c *QueryController) displayError(err error) {
	c.surface.SetAnswerText(FailurePrefix + err.Error())
	c.surface.ClearSources()
	c.surface.SetResponseVisible(true)
}
