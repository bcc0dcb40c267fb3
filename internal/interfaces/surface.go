package interfaces

import "github.com/ternarybob/policyqa/internal/models"

// Surface is the render target an ask cycle drives: the question input, the
// alert, the loading indicator, the submit control and the response area
// (answer text and sources container).
type Surface interface {
	// QuestionText returns the current content of the question input
	QuestionText() string

	// Alert shows a blocking notice to the user
	Alert(message string)

	SetLoadingVisible(visible bool)
	SetResponseVisible(visible bool)
	SetSubmitEnabled(enabled bool)

	// SetAnswerText replaces the answer text
	SetAnswerText(text string)

	// ClearSources removes every rendered source block and placeholder
	ClearSources()

	// AppendSource renders one source block after the existing ones
	AppendSource(block models.SourceBlock)

	// ShowSourcesPlaceholder renders a single placeholder block
	ShowSourcesPlaceholder(text string)
}
