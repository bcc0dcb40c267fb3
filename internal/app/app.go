// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 11:02:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/policyqa/internal/common"
	"github.com/ternarybob/policyqa/internal/handlers"
	"github.com/ternarybob/policyqa/internal/interfaces"
	"github.com/ternarybob/policyqa/internal/qaclient"
	"github.com/ternarybob/policyqa/internal/services/events"
	"github.com/ternarybob/policyqa/internal/services/transform"
	"github.com/ternarybob/policyqa/internal/templates"
	"github.com/ternarybob/policyqa/internal/view"
)

// sessionSweepInterval is how often idle web sessions are dropped
const sessionSweepInterval = time.Minute

// App holds all application components and dependencies
type App struct {
	Config    *common.Config
	Logger    arbor.ILogger
	ctx       context.Context
	cancelCtx context.CancelFunc

	// Services
	QAClient         interfaces.QAClient
	EventService     interfaces.EventService
	TransformService *transform.Service
	Page             *view.Page
	Sessions         *handlers.SessionStore

	// HTTP handlers
	PageHandler *handlers.PageHandler
	AskHandler  *handlers.AskHandler
	WSHandler   *handlers.WebSocketHandler
	APIHandler  *handlers.APIHandler
}

// New initializes the web host application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	app.ctx, app.cancelCtx = context.WithCancel(context.Background())

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return app, nil
}

// NewQAClient builds the question-answering client from configuration
func NewQAClient(cfg *common.Config, logger arbor.ILogger) (*qaclient.Client, error) {
	timeout, err := cfg.EndpointTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint timeout: %w", err)
	}

	opts := []qaclient.ClientOption{
		qaclient.WithLogger(logger),
		qaclient.WithTimeout(timeout),
		qaclient.WithRateLimit(cfg.Endpoint.RateLimit),
	}
	if cfg.Endpoint.StatusURL != "" {
		opts = append(opts, qaclient.WithStatusURL(cfg.Endpoint.StatusURL))
	}

	return qaclient.NewClient(cfg.Endpoint.URL, opts...), nil
}

func (a *App) initServices() error {
	client, err := NewQAClient(a.Config, a.Logger)
	if err != nil {
		return err
	}
	a.QAClient = client

	a.EventService = events.NewService(a.Logger)
	if err := events.SubscribeLogger(a.EventService, a.Logger); err != nil {
		return err
	}
	a.TransformService = transform.NewService(a.Logger)

	tmpl, err := templates.Load(a.Config.Render.TemplatesDir)
	if err != nil {
		return fmt.Errorf("failed to load page templates: %w", err)
	}
	a.Page = view.NewPage(tmpl, a.TransformService, a.Logger, view.PageOptions{
		RawSourceMarkup: a.Config.Render.RawSourceMarkup,
		MarkdownAnswers: a.Config.Render.MarkdownAnswers,
		Endpoint:        a.Config.Endpoint.URL,
		Version:         common.GetVersion(),
	})

	idleTTL, err := a.Config.SessionIdleTTL()
	if err != nil {
		return fmt.Errorf("invalid session idle ttl: %w", err)
	}
	a.Sessions = handlers.NewSessionStore(a.QAClient, a.EventService, idleTTL, a.Logger)
	a.Sessions.StartSweeper(a.ctx, sessionSweepInterval)

	a.Logger.Debug().
		Str("endpoint", client.Endpoint()).
		Dur("session_idle_ttl", idleTTL).
		Bool("markdown_answers", a.Config.Render.MarkdownAnswers).
		Msg("Services initialized")

	return nil
}

func (a *App) initHandlers() error {
	a.PageHandler = handlers.NewPageHandler(a.Sessions, a.Page, a.Logger)
	a.AskHandler = handlers.NewAskHandler(a.Sessions, a.Page, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.Sessions, a.Page, a.EventService, a.Logger)
	a.APIHandler = handlers.NewAPIHandler(a.QAClient, a.Sessions, a.Logger)
	return nil
}

// Close stops background goroutines and the event service
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	return nil
}
