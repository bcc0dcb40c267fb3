package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAskQuestionTool returns the ask_question tool definition
func createAskQuestionTool() mcp.Tool {
	return mcp.NewTool("ask_question",
		mcp.WithDescription("Ask the policy question-answering service a question and return its answer with the source excerpts it cited"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural language question about the policy documents"),
		),
	)
}
