package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/alpost/backend/pkg/logging"
	"github.com/alpost/backend/pkg/telemetry"
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

// MethodHandler is a function that handles a JSON-RPC method
type MethodHandler func(ctx *gin.Context, params json.RawMessage) (interface{}, error)

// JSONRPCHandler handles JSON-RPC requests
type JSONRPCHandler struct {
	methods map[string]MethodHandler
}

// NewJSONRPCHandler creates a new JSON-RPC handler
func NewJSONRPCHandler() *JSONRPCHandler {
	return &JSONRPCHandler{
		methods: make(map[string]MethodHandler),
	}
}

// RegisterMethod registers a method handler
func (h *JSONRPCHandler) RegisterMethod(method string, handler MethodHandler) {
	h.methods[method] = handler
}

// Handle handles a JSON-RPC request
func (h *JSONRPCHandler) Handle(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "jsonrpc.handle")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req JSONRPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, nil, &Error{Code: ErrParseError, Message: "Parse error"}, err)
		return
	}

	if req.JSONRPC != "2.0" {
		h.sendError(c, req.ID, &Error{Code: ErrInvalidRequest, Message: "Invalid Request"}, fmt.Errorf("invalid jsonrpc version"))
		return
	}
	span.SetAttributes(attribute.String("rpc.method", req.Method))

	handler, ok := h.methods[req.Method]
	if !ok {
		h.sendError(c, req.ID, &Error{Code: ErrMethodNotFound, Message: "Method not found"}, fmt.Errorf("method %s not found", req.Method))
		return
	}

	result, err := handler(c, req.Params)
	if err != nil {
		apiErr := toAPIError(err)
		if apiErr.Code == ErrServerError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		h.sendError(c, req.ID, apiErr, err)
		return
	}

	h.sendResponse(c, req.ID, result)
}

// sendResponse sends a successful JSON-RPC response
func (h *JSONRPCHandler) sendResponse(c *gin.Context, id interface{}, result interface{}) {
	if result == nil {
		result = json.RawMessage("null")
	}
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	c.JSON(http.StatusOK, resp)
}

// sendError sends an error JSON-RPC response. Server errors are logged
// with their cause; client errors only at debug level.
func (h *JSONRPCHandler) sendError(c *gin.Context, id interface{}, apiErr *Error, err error) {
	logger := logging.FromContext(c.Request.Context()).With(zap.String("component", "jsonrpc"))
	if apiErr.Code == ErrServerError {
		logger.Error("JSON-RPC error", zap.String("message", apiErr.Message), zap.Error(err))
	} else {
		logger.Debug("JSON-RPC request rejected", zap.Int("code", apiErr.Code), zap.Error(err))
	}

	data := apiErr.Data
	if data == nil && apiErr.Code != ErrServerError && err != nil {
		data = err.Error()
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Data:    data,
		},
	}
	c.JSON(http.StatusOK, resp)
}

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)

