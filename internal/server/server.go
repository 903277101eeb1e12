package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/ironsheep/image-effects-mcp/internal/config"
	"github.com/ironsheep/image-effects-mcp/internal/document"
	"github.com/ironsheep/image-effects-mcp/internal/effects"
	"github.com/ironsheep/image-effects-mcp/internal/history"
	"github.com/ironsheep/image-effects-mcp/internal/imaging"
	"github.com/ironsheep/image-effects-mcp/internal/logging"
	"github.com/ironsheep/image-effects-mcp/internal/render"
)

// Base history records for a fresh canvas.
var (
	openImageRecord = history.Record{Icon: "Menu.File.Open.png", Label: "Open Image"}
	newImageRecord  = history.Record{Icon: "Menu.File.New.png", Label: "New Image"}
)

// Server handles MCP protocol communication for one editing session: a
// single open canvas, its edit history and the effect registry.
type Server struct {
	version  string
	cache    *imaging.ImageCache
	registry *effects.Registry
	coord    *render.Coordinator
	inv      *render.Invalidator

	mu   sync.Mutex
	doc  *document.Document
	path string

	damageMu sync.Mutex
	damage   image.Rectangle
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server with no canvas open. version is reported in the
// initialize handshake.
func New(cfg config.Config, version string) *Server {
	s := &Server{
		version:  version,
		cache:    imaging.NewImageCache(),
		registry: effects.NewRegistry(),
	}
	s.inv = render.NewInvalidator(s.addDamage)
	s.coord = render.NewCoordinator(newImageRecord,
		render.WithWorkers(cfg.Workers),
		render.WithHistoryLimit(cfg.HistoryLimit),
		render.WithInvalidator(s.inv),
	)
	return s
}

// addDamage accumulates invalidated canvas regions until a preview of the
// "dirty" region consumes them.
func (s *Server) addDamage(r image.Rectangle) {
	s.damageMu.Lock()
	s.damage = s.damage.Union(r)
	s.damageMu.Unlock()
	logging.Logger().Debug("canvas invalidated", "region", r.String())
}

// takeDamage returns and clears the accumulated region.
func (s *Server) takeDamage() image.Rectangle {
	s.inv.Flush()
	s.damageMu.Lock()
	defer s.damageMu.Unlock()
	r := s.damage
	s.damage = image.Rectangle{}
	return r
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.inv.Run(ctx)

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)
	log := logging.Logger()

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return ctx.Err()
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	logging.Logger().Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-effects-mcp",
				"version": s.version,
			},
		},
	}
}
