package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MethodHandler handles one yatube.* method. Params are the raw named params.
type MethodHandler func(ctx *gin.Context, params json.RawMessage) (interface{}, error)

// JSONRPCHandler dispatches POST /rpc calls to the registered yatube methods.
type JSONRPCHandler struct {
	methods map[string]MethodHandler
}

func NewJSONRPCHandler() *JSONRPCHandler {
	return &JSONRPCHandler{methods: make(map[string]MethodHandler)}
}

// RegisterMethod registers a method handler. Registering a name twice panics.
func (h *JSONRPCHandler) RegisterMethod(method string, handler MethodHandler) {
	if _, dup := h.methods[method]; dup {
		panic(fmt.Sprintf("jsonrpc: method %s registered twice", method))
	}
	h.methods[method] = handler
}

// Handle decodes one call and runs it inside a span named after the method.
func (h *JSONRPCHandler) Handle(c *gin.Context) {
	var req JSONRPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, nil, ErrParseError, "Parse error", err)
		return
	}
	if req.JSONRPC != "2.0" {
		h.sendError(c, req.ID, ErrInvalidRequest, "Invalid Request", fmt.Errorf("invalid jsonrpc version %q", req.JSONRPC))
		return
	}
	handler, ok := h.methods[req.Method]
	if !ok {
		telemetry.RecordRPCCall(c.Request.Context(), "unknown", ErrMethodNotFound)
		h.sendError(c, req.ID, ErrMethodNotFound, "Method not found", fmt.Errorf("method %s not found", req.Method))
		return
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "rpc "+req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", req.Method),
		))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := handler(c, req.Params)
	if err != nil {
		code, message := rpcError(err)
		span.SetAttributes(attribute.Int("rpc.jsonrpc.error_code", code))
		if code == CodeServerError {
			span.RecordError(err)
			span.SetStatus(codes.Error, message)
		}
		telemetry.RecordRPCCall(ctx, req.Method, code)
		h.sendError(c, req.ID, code, message, err)
		return
	}

	telemetry.RecordRPCCall(ctx, req.Method, 0)
	c.JSON(http.StatusOK, JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
}

// sendError writes an error response. Server errors carry no data, so
// internal failures are only visible in the logs.
func (h *JSONRPCHandler) sendError(c *gin.Context, id interface{}, code int, message string, err error) {
	rpcErr := &JSONRPCError{Code: code, Message: message}

	logger := logging.FromGin(c)
	if code == CodeServerError || code == ErrInternalError {
		logger.Error("JSON-RPC call failed", zap.Int("code", code), zap.Error(err))
	} else {
		logger.Debug("JSON-RPC call rejected", zap.Int("code", code), zap.Error(err))
		rpcErr.Data = err.Error()
	}

	c.JSON(http.StatusOK, JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)
