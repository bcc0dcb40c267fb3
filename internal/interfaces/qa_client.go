package interfaces

import (
	"context"

	"github.com/ternarybob/policyqa/internal/models"
)

// ServiceStatus is the body returned by the question-answering service root
type ServiceStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// QAClient sends questions to the remote question-answering service
type QAClient interface {
	// Ask posts the question and returns the parsed answer
	Ask(ctx context.Context, question string) (*models.AnswerResult, error)

	// Status checks the service root
	Status(ctx context.Context) (*ServiceStatus, error)

	// Endpoint returns the URL questions are posted to
	Endpoint() string
}
