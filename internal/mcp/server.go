package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/voyagehq/tripsearch-mcp/internal/config"
	"github.com/voyagehq/tripsearch-mcp/internal/facts"
	"github.com/voyagehq/tripsearch-mcp/internal/searcher"
	"github.com/voyagehq/tripsearch-mcp/internal/semantic"
	"github.com/voyagehq/tripsearch-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "tripsearch-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.tripsearch"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	searcher *searcher.Searcher
	semantic *semantic.Indexer
	facts    *facts.Engine
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".tripsearch")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "tripsearch.db")

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Load scoring and limit configuration (TRIPSEARCH_CONFIG overrides defaults)
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create the facts recomputation engine
	engine := facts.NewEngine(store)

	// Create the semantic component indexer
	idx := semantic.NewIndexer(store, cfg)

	// Create searcher
	srch := searcher.NewSearcher(store, cfg)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		searcher: srch,
		semantic: idx,
		facts:    engine,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(searchTripsTool(), s.handleSearchTrips)
	s.mcp.AddTool(semanticSearchTool(), s.handleSemanticSearch)
	s.mcp.AddTool(ensureFactsFreshTool(), s.handleEnsureFactsFresh)
	s.mcp.AddTool(bulkRefreshFactsTool(), s.handleBulkRefreshFacts)
	s.mcp.AddTool(reindexComponentsTool(), s.handleReindexComponents)
	s.mcp.AddTool(upsertTripTool(), s.handleUpsertTrip)
	s.mcp.AddTool(listTripsTool(), s.handleListTrips)
	s.mcp.AddTool(getTripTool(), s.handleGetTrip)
	s.mcp.AddTool(deleteTripTool(), s.handleDeleteTrip)

	return nil
}
