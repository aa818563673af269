package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/session"
	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 60 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

const kindSessionNotFound = "session_not_found"

const (
	errTitleParseError   = "Parse error"
	errTitleInvalidReq   = "Invalid Request"
	errMsgParseError     = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC = "'jsonrpc' must be '2.0'"
	errMsgIDRequired     = "'id' field is required"
	errMsgMethodRequired = "'method' is required"
)

var okResponse = map[string]interface{}{"status": "ok"}

var (
	errMethodNotFound = errors.New("method not found")
	errInvalidParams  = errors.New("invalid params")
)

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// ErrorData is the "data" member of server errors.
type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// commandError carries the kind of a failed command response.
type commandError struct {
	kind    string
	message string
}

func (e *commandError) Error() string {
	return e.message
}

// Loader opens a session for a session_load call.
type Loader func(ctx context.Context, req commands.SessionRequest) (*session.Session, error)

type Options struct {
	Loader      Loader
	Lister      commands.DeviceLister
	MaxSessions int
	EnableCORS  bool
}

// Server exposes sessions over JSON-RPC on /rpc and /ws.
type Server struct {
	loader     Loader
	lister     commands.DeviceLister
	enableCORS bool
	pool       *SessionPool
	registry   map[string]HandlerFunc

	mu         sync.Mutex
	httpServer *http.Server
	onShutdown func()
}

func New(opts Options) (*Server, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("%w: loader is required", types.ErrInvalidConfig)
	}
	if opts.MaxSessions <= 0 {
		return nil, fmt.Errorf("%w: max sessions must be positive", types.ErrInvalidConfig)
	}

	pool, err := NewSessionPool(opts.MaxSessions)
	if err != nil {
		return nil, err
	}

	s := &Server{
		loader:     opts.Loader,
		lister:     opts.Lister,
		enableCORS: opts.EnableCORS,
		pool:       pool,
	}
	s.registry = s.methodRegistry()
	return s, nil
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler serving /, /rpc and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", s.handleJSONRPC)
	mux.HandleFunc("/ws", s.handleWebSocket)

	if s.enableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

// ListenAndServe serves until Shutdown is called or server.shutdown is
// received. A bare port listens on localhost.
func (s *Server) ListenAndServe(addr string) error {
	host, port, err := utils.NormalizeListenAddr(addr, "localhost")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.onShutdown = func() {
		if err := s.Shutdown(context.Background()); err != nil {
			utils.Warn("Server shutdown failed: %v", err)
		}
	}
	s.mu.Unlock()

	utils.Info("Starting server on http://%s...", httpServer.Addr)
	err = httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	var err error
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
		defer cancel()
		utils.Info("Shutting down server")
		err = httpServer.Shutdown(ctx)
	}

	return errors.Join(err, s.Close())
}

// Close closes every pooled session.
func (s *Server) Close() error {
	return s.pool.Close()
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if code, message, data, ok := validateRequest(req); !ok {
		sendJSONRPCError(w, req.ID, code, message, data)
		return
	}

	utils.Info("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, err := s.Execute(r.Context(), req.Method, req.Params)
	if err != nil {
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		code, message, data := rpcError(err)
		sendJSONRPCError(w, req.ID, code, message, data)
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

// validateRequest checks the envelope shared by both transports.
func validateRequest(req JSONRPCRequest) (int, string, interface{}, bool) {
	if req.JSONRPC != "2.0" {
		return ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC, false
	}
	if req.ID == nil {
		return ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired, false
	}
	if req.Method == "" {
		return ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired, false
	}
	return 0, "", nil, true
}

// rpcError maps a handler error to a JSON-RPC code, message and data.
func rpcError(err error) (int, string, interface{}) {
	var cmdErr *commandError
	switch {
	case errors.Is(err, errMethodNotFound):
		return ErrCodeMethodNotFound, "Method not found", err.Error()
	case errors.Is(err, errInvalidParams):
		return ErrCodeInvalidParams, "Invalid params", err.Error()
	case errors.Is(err, ErrSessionNotFound):
		return ErrCodeServerError, "Server error", ErrorData{Kind: kindSessionNotFound, Message: err.Error()}
	case errors.As(err, &cmdErr):
		return ErrCodeServerError, "Server error", ErrorData{Kind: cmdErr.kind, Message: cmdErr.message}
	default:
		return ErrCodeServerError, "Server error", ErrorData{Kind: types.ErrorKind(err), Message: err.Error()}
	}
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
