// Package mcpserver exposes a studio session over the Model Context
// Protocol. One server carries one in-memory session; personas and the
// script live only as long as the process.
package mcpserver

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"

	"github.com/apresai/sflstudio/internal/generate"
	"github.com/apresai/sflstudio/internal/studio"
)

// Config holds server configuration.
type Config struct {
	Port           int
	Provider       string
	Model          string
	ThinkingBudget int
}

// DefaultConfig returns a Config populated from environment variables.
func DefaultConfig() Config {
	return Config{
		Port:           envInt("SFLSTUDIO_MCP_PORT", 8000),
		Provider:       envOr("SFLSTUDIO_PROVIDER", "gemini"),
		Model:          envOr("SFLSTUDIO_MODEL", ""),
		ThinkingBudget: envInt("SFLSTUDIO_THINKING_BUDGET", -1),
	}
}

// Server is the MCP server wrapping one studio session.
type Server struct {
	cfg      Config
	mcp      *server.MCPServer
	handlers *Handlers
	log      *slog.Logger
}

// New creates and configures the MCP server.
func New(cfg Config, gen generate.Generator, logger *slog.Logger) *Server {
	session := studio.NewSession(gen, cfg.ThinkingBudget, logger)
	handlers := NewHandlers(session, logger)

	mcpServer := server.NewMCPServer(
		"sflstudio",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	tools := ToolDefs()
	mcpServer.AddTool(tools[0], handlers.HandleAnalyzeDocument)
	mcpServer.AddTool(tools[1], handlers.HandleListPersonas)
	mcpServer.AddTool(tools[2], handlers.HandleUpdatePersonaConfig)
	mcpServer.AddTool(tools[3], handlers.HandleUpdatePersonaDetails)
	mcpServer.AddTool(tools[4], handlers.HandleDeletePersona)
	mcpServer.AddTool(tools[5], handlers.HandleReorderPersonas)
	mcpServer.AddTool(tools[6], handlers.HandleToggleSelection)
	mcpServer.AddTool(tools[7], handlers.HandleGenerateDialogue)
	mcpServer.AddTool(tools[8], handlers.HandleRefineTurn)
	mcpServer.AddTool(tools[9], handlers.HandleContinueDialogue)
	mcpServer.AddTool(tools[10], handlers.HandleGetScript)

	return &Server{
		cfg:      cfg,
		mcp:      mcpServer,
		handlers: handlers,
		log:      logger,
	}
}

// Start runs the HTTP MCP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info("Starting MCP server", "addr", addr, "provider", s.cfg.Provider)

	httpServer := server.NewStreamableHTTPServer(s.mcp)
	return httpServer.Start(addr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
