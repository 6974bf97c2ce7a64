package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"answerhub/config"
	"answerhub/internal/history"
	"answerhub/internal/knowledge"
	"answerhub/internal/pipeline"
	"answerhub/internal/router"
	"answerhub/internal/telemetry"
	"answerhub/internal/workspace"
	"answerhub/provider"
	"answerhub/tools/embedding"
	"answerhub/tools/image_search"
	"answerhub/tools/web_fetch"
	"answerhub/tools/web_search"
)

// Server wires the router, pipelines and stores behind the HTTP API.
type Server struct {
	cfg        *config.Config
	llm        provider.Provider
	router     *router.Router
	pipelines  map[string]*pipeline.Pipeline
	workspaces *workspace.Manager
	history    history.Store
	images     image_search.ImageSearcher
	panels     *knowledge.PanelBuilder
	tel        *telemetry.Telemetry
	logger     *log.Logger
}

// New builds the server and all of its dependencies from config.
func New(cfg *config.Config) (*Server, error) {
	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	var embedder workspace.Embedder
	if cfg.LLM.Embeddings {
		embedder = embedding.NewEmbedding(llm)
	}

	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Type), cfg.Fetch.Timeout, cfg.Fetch.MaxChars)
	if err != nil {
		return nil, fmt.Errorf("web fetch: %w", err)
	}

	var images image_search.ImageSearcher
	if cfg.Search.ImageAPIKey != "" {
		images, err = image_search.NewImageSearcher(image_search.Provider(cfg.Search.ImageProvider), cfg.Search.ImageAPIKey)
		if err != nil {
			return nil, fmt.Errorf("image search: %w", err)
		}
	}

	hist, err := history.NewStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	workspaces, err := workspace.NewManager(cfg.Workspace, embedder)
	if err != nil {
		return nil, fmt.Errorf("workspace manager: %w", err)
	}

	var kidx *knowledge.Index
	if cfg.Knowledge.Enabled && len(cfg.Knowledge.SeedURLs) > 0 {
		kidx, err = knowledge.NewIndex(embedder)
		if err != nil {
			return nil, fmt.Errorf("knowledge index: %w", err)
		}
		go kidx.Build(context.Background(), fetcher, cfg.Knowledge.SeedURLs,
			cfg.Workspace.ChunkSize, cfg.Workspace.ChunkOverlap)
	}

	tel := telemetry.New()
	logger := log.New(log.Writer(), "[SERVER] ", log.LstdFlags)

	deps := pipeline.Deps{
		LLM:        llm,
		Search:     searcher,
		Fetch:      fetcher,
		Images:     images,
		Workspaces: workspaces,
		Knowledge:  kidx,
		Telemetry:  tel,
		Logger:     logger,
	}

	s := &Server{
		cfg:    cfg,
		llm:    llm,
		router: router.New(llm, tel),
		pipelines: map[string]*pipeline.Pipeline{
			pipelineWebSearch:    pipeline.NewWebSearch(deps),
			pipelineDocumentOnly: pipeline.NewDocumentOnly(deps),
			pipelineAgentic:      pipeline.NewAgentic(deps),
			pipelineDeepResearch: pipeline.NewDeepResearch(deps),
			pipelineAnalysis:     pipeline.NewAnalysis(deps),
			pipelineSummarize:    pipeline.NewSummarize(deps),
		},
		workspaces: workspaces,
		history:    hist,
		images:     images,
		panels:     knowledge.NewPanelBuilder(llm),
		tel:        tel,
		logger:     logger,
	}
	return s, nil
}

const (
	pipelineWebSearch    = "web_search"
	pipelineDocumentOnly = "document_only"
	pipelineAgentic      = "agentic"
	pipelineDeepResearch = "deep_research"
	pipelineAnalysis     = "analysis"
	pipelineSummarize    = "summarize"
)

// Run starts the HTTP server and, when configured, the workspace janitor.
func Run(cfg *config.Config) error {
	s, err := New(cfg)
	if err != nil {
		return err
	}

	if cfg.Workspace.RetentionCron != "" && cfg.Workspace.RetentionTTL > 0 {
		janitor := workspace.NewJanitor(s.workspaces, cfg.Workspace.RetentionCron, cfg.Workspace.RetentionTTL)
		janitor.Start()
		defer close(janitor.Stop)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	if cfg.Server.JWTSecret != "" {
		api.POST("/token", s.issueToken)
		api.Use(workspaceAuth([]byte(cfg.Server.JWTSecret)))
	}
	s.register(api)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10001"
	}
	if addr[0] != ':' {
		addr = ":" + addr
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// register mounts every API route on the group.
func (s *Server) register(api *echo.Group) {
	api.POST("/chat", s.chat)
	api.POST("/chat/stream", s.chatStream)

	api.POST("/web", s.modeHandler(pipelineWebSearch))
	api.POST("/rag", s.modeHandler(pipelineDocumentOnly))
	api.POST("/agentic", s.modeHandler(pipelineAgentic))
	api.POST("/deep_research", s.deepResearch)
	api.POST("/analyze", s.modeHandler(pipelineAnalysis))
	api.POST("/summarize", s.summarize)

	api.POST("/focus", s.persona("focus"))
	api.POST("/writing", s.persona("writing"))
	api.POST("/math", s.persona("math"))
	api.POST("/code", s.persona("code"))

	api.POST("/upload_docs", s.uploadFile)
	api.GET("/workspace_files/:id", s.listFiles)
	api.DELETE("/workspace/:id", s.clearWorkspace)

	api.GET("/history", s.getHistory)
	api.DELETE("/history", s.clearHistory)

	api.GET("/knowledge_panel", s.knowledgePanel)
}
