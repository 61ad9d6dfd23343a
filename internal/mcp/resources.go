package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) stateResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	catalog, workout := h.sess.State()
	return jsonContents(req.Params.URI, stateResult{Catalog: catalog, Workout: workout})
}

func (h *handlers) workoutsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if err := h.sess.RefreshWorkouts(ctx); err != nil {
		h.log.Warn("workouts resource: using cached list", "error", err)
	}
	return jsonContents(req.Params.URI, h.sess.Workouts())
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
