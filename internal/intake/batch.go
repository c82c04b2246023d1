package intake

import (
	"context"
	"fmt"

	"intakr/internal/store"
)

// BatchResult is the per-item outcome of a batch conversion. A failed item
// is a normal result value, not an error: siblings still succeed.
type BatchResult struct {
	RequestID      string `json:"requestId"`
	Success        bool   `json:"success"`
	AdminProjectID string `json:"adminProjectId,omitempty"`
	Error          string `json:"error,omitempty"`
}

// TransitionBatch applies the same status transition to many requests.
// Items are read and evaluated serially; per-item failures (missing
// request) are recorded without stopping the rest. A request id repeated
// within the batch is planned once and later occurrences reuse that plan,
// keeping project materialization at most once per request. All accumulated
// writes commit together in one grouped transaction, so either every
// surviving item's patch lands or none do.
func (s *Service) TransitionBatch(ctx context.Context, ids []string, target Status, operator string) ([]BatchResult, error) {
	if operator == "" {
		return nil, &ValidationError{Field: "operator"}
	}
	if !target.Valid() {
		return nil, &ValidationError{Field: "status"}
	}

	results := make([]BatchResult, 0, len(ids))
	planned := make(map[string]BatchResult)
	var group []store.Op

	for _, id := range ids {
		if id == "" {
			results = append(results, BatchResult{RequestID: id, Error: "missing request id"})
			continue
		}
		if prev, ok := planned[id]; ok {
			results = append(results, prev)
			continue
		}

		var req Request
		if err := s.store.Get(ctx, CollectionRequests, id, &req); err != nil {
			msg := fmt.Sprintf("loading request: %v", err)
			if IsNotFound(err) {
				msg = "project request not found"
			}
			res := BatchResult{RequestID: id, Error: msg}
			planned[id] = res
			results = append(results, res)
			continue
		}
		req.ID = id

		ops, projectID := s.plan(&req, TransitionRequest{
			RequestID: id,
			Target:    target,
			Operator:  operator,
		})
		group = append(group, ops...)
		res := BatchResult{
			RequestID:      id,
			Success:        true,
			AdminProjectID: projectID,
		}
		planned[id] = res
		results = append(results, res)
	}

	if len(group) > 0 {
		if err := s.store.Apply(ctx, group); err != nil {
			return nil, fmt.Errorf("committing batch: %w", err)
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	s.log.Info("batch transition finished",
		"target", target,
		"total", len(results),
		"succeeded", succeeded,
	)

	return results, nil
}
