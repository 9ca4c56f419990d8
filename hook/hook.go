// Package hook implements the caller-facing request/response contract of the
// cache: one JSON request document in, one JSON response document out. The
// orchestrator invokes it before a tool runs (pre-check) and after the tool
// returns (post-store).
//
// A malformed or unreadable request yields a plain miss / skip response, not
// an error: a broken hook must never block the real tool invocation path.
package hook

import (
	"context"
	"encoding/json"
	"io"

	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/toolcache/cache"
	"github.com/jonwraymond/toolcache/observe"
)

// PreCheckRequest asks whether a cached result exists for a tool invocation.
type PreCheckRequest struct {
	ToolName  string `json:"tool_name"`
	ToolInput any    `json:"tool_input"`
}

// PreCheckResponse reports the lookup outcome. Result and HitCount are only
// present on a hit.
type PreCheckResponse struct {
	Hit      bool   `json:"hit"`
	Result   string `json:"result,omitempty"`
	HitCount int64  `json:"hit_count,omitempty"`
}

// PostStoreRequest submits a tool result for caching.
type PostStoreRequest struct {
	ToolName  string `json:"tool_name"`
	ToolInput any    `json:"tool_input"`
	Result    string `json:"result"`
}

// PostStoreResponse reports whether the result was durably stored.
type PostStoreResponse struct {
	Stored bool `json:"stored"`
}

// Handler dispatches hook requests to a cache controller.
type Handler struct {
	ctrl *cache.Controller
	tel  *observe.Telemetry
}

// NewHandler creates a Handler. A nil telemetry disables spans.
func NewHandler(ctrl *cache.Controller, tel *observe.Telemetry) *Handler {
	return &Handler{ctrl: ctrl, tel: tel}
}

// PreCheck reads one PreCheckRequest from r and writes the response to w.
// The returned error only ever concerns writing the response; request
// problems resolve to a miss.
func (h *Handler) PreCheck(ctx context.Context, r io.Reader, w io.Writer) error {
	var req PreCheckRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil || req.ToolName == "" {
		return writeJSON(w, PreCheckResponse{})
	}

	ctx, span := h.startOp(ctx, "precheck", req.ToolName)
	res := h.ctrl.PreCheck(ctx, req.ToolName, req.ToolInput)
	h.endOp(span)

	return writeJSON(w, PreCheckResponse{
		Hit:      res.Hit,
		Result:   res.Result,
		HitCount: res.HitCount,
	})
}

// PostStore reads one PostStoreRequest from r and writes the response to w.
// Request problems resolve to a skip.
func (h *Handler) PostStore(ctx context.Context, r io.Reader, w io.Writer) error {
	var req PostStoreRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil || req.ToolName == "" {
		return writeJSON(w, PostStoreResponse{})
	}

	ctx, span := h.startOp(ctx, "poststore", req.ToolName)
	res := h.ctrl.PostStore(ctx, req.ToolName, req.ToolInput, req.Result)
	h.endOp(span)

	return writeJSON(w, PostStoreResponse{Stored: res.Stored})
}

func (h *Handler) startOp(ctx context.Context, op, toolName string) (context.Context, trace.Span) {
	if h.tel == nil {
		return ctx, nil
	}
	return h.tel.StartOp(ctx, op, toolName)
}

func (h *Handler) endOp(span trace.Span) {
	if span == nil {
		return
	}
	h.tel.EndOp(span, nil)
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
