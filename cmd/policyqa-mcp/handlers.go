package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/policyqa/internal/controller"
	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/services/transform"
	"github.com/ternarybob/policyqa/internal/view"
)

// questionAsker runs each tool call as its own ask cycle
type questionAsker struct {
	client    interfaces.QAClient
	transform *transform.Service
	rawMarkup bool
	logger    arbor.ILogger
}

// ask runs one cycle on a fresh surface and returns its text rendering
func (a *questionAsker) ask(ctx context.Context, question string) (string, controller.Cycle) {
	model := view.NewModel()
	model.SetQuestionText(question)

	cycle := controller.NewQueryController(a.client, model, a.logger).Click(ctx)
	if cycle.Outcome == controller.OutcomeRejected {
		return model.TakeAlert(), cycle
	}

	text := view.NewText(a.transform, a.rawMarkup, nil)
	return text.Render(model.Snapshot()), cycle
}

// handleAskQuestion implements the ask_question tool
func handleAskQuestion(asker *questionAsker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: question parameter is required"),
				},
				IsError: true,
			}, nil
		}

		output, cycle := asker.ask(ctx, question)

		switch cycle.Outcome {
		case controller.OutcomeRejected:
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: %s", output)),
				},
				IsError: true,
			}, nil
		case controller.OutcomeFailed:
			asker.logger.Warn().Err(cycle.Err).Msg("ask_question failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(output),
				},
				IsError: true,
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(output),
			},
		}, nil
	}
}
