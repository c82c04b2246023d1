package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"intakr/internal/store"
)

// Store is the slice of the document store the conversion service needs.
// store.DB satisfies it; tests use an in-memory fake.
type Store interface {
	Get(ctx context.Context, collection, id string, out any) error
	Add(ctx context.Context, collection string, v any) (string, error)
	List(ctx context.Context, collection string) ([]store.Document, error)
	Apply(ctx context.Context, ops []store.Op) error
}

// Service applies request transitions against a backing store.
type Service struct {
	store Store
	log   *slog.Logger

	// Injected for deterministic tests.
	now   func() time.Time
	newID func() string
}

func NewService(st Store, logger *slog.Logger) *Service {
	return &Service{
		store: st,
		log:   logger,
		now:   time.Now,
		newID: store.NewID,
	}
}

// TransitionRequest carries one requested status change.
type TransitionRequest struct {
	RequestID string
	Target    Status
	Operator  string
	Deadline  time.Time // optional project deadline override; zero means default
}

// TransitionResult reports a successful transition. AdminProjectID is set
// whenever the request has a project, whether it was created by this call
// or by an earlier one.
type TransitionResult struct {
	RequestID      string
	AdminProjectID string
}

func (tr TransitionRequest) validate() error {
	if tr.RequestID == "" {
		return &ValidationError{Field: "requestId"}
	}
	if tr.Operator == "" {
		return &ValidationError{Field: "operator"}
	}
	if !tr.Target.Valid() {
		return &ValidationError{Field: "status"}
	}
	return nil
}

// Transition validates and enacts one status change. Entering accepted or
// in-progress on a request without a project materializes one; the project
// insert and the request patch commit as a single transaction guarded on
// adminProjectId still being empty, so a racing transition that lost the
// commit re-reads and reuses the winner's project.
func (s *Service) Transition(ctx context.Context, tr TransitionRequest) (TransitionResult, error) {
	if err := tr.validate(); err != nil {
		return TransitionResult{}, err
	}

	var projectID string
	for attempt := 0; ; attempt++ {
		var req Request
		if err := s.store.Get(ctx, CollectionRequests, tr.RequestID, &req); err != nil {
			return TransitionResult{}, fmt.Errorf("loading request: %w", err)
		}
		req.ID = tr.RequestID

		var ops []store.Op
		ops, projectID = s.plan(&req, tr)
		err := s.store.Apply(ctx, ops)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrConflict) && attempt == 0 {
			// A concurrent transition materialized first.
			continue
		}
		return TransitionResult{}, fmt.Errorf("committing transition: %w", err)
	}

	s.log.Info("request transitioned",
		"request", tr.RequestID,
		"status", tr.Target,
		"operator", tr.Operator,
		"project", projectID,
	)

	return TransitionResult{RequestID: tr.RequestID, AdminProjectID: projectID}, nil
}

// plan computes the writes for one transition: the request status patch
// plus, when the target enters accepted/in-progress and no project exists
// yet, the materialized project and the adminProjectId back-reference. The
// materializing patch requires adminProjectId to still be absent when the
// transaction commits, so the guard holds even against writes that landed
// after our read.
func (s *Service) plan(req *Request, tr TransitionRequest) ([]store.Op, string) {
	now := s.now()

	patch := map[string]any{
		"status":    tr.Target,
		"updatedAt": now,
	}
	switch tr.Target {
	case StatusAccepted:
		patch["acceptedAt"] = now
		patch["acceptedBy"] = tr.Operator
	case StatusInProgress:
		patch["startedAt"] = now
		patch["startedBy"] = tr.Operator
	}

	projectID := req.AdminProjectID
	var ops []store.Op

	var guard []string
	converts := tr.Target == StatusAccepted || tr.Target == StatusInProgress
	if converts && req.AdminProjectID == "" {
		projectID = s.newID()
		ops = append(ops, store.Op{
			Kind:       store.OpAdd,
			Collection: CollectionProjects,
			ID:         projectID,
			Doc:        s.materialize(req, tr, now),
		})
		patch["adminProjectId"] = projectID
		guard = []string{"adminProjectId"}
	}

	ops = append(ops, store.Op{
		Kind:          store.OpUpdate,
		Collection:    CollectionRequests,
		ID:            req.ID,
		Patch:         patch,
		RequireAbsent: guard,
	})
	return ops, projectID
}

// Submit stores a new pending request and returns its id.
func (s *Service) Submit(ctx context.Context, req Request) (string, error) {
	if req.ProjectName == "" {
		return "", &ValidationError{Field: "projectName"}
	}
	req.ID = ""
	req.Status = StatusPending
	req.CreatedAt = s.now()
	req.UpdatedAt = req.CreatedAt

	id, err := s.store.Add(ctx, CollectionRequests, req)
	if err != nil {
		return "", fmt.Errorf("storing request: %w", err)
	}
	s.log.Info("request submitted", "request", id, "project", req.ProjectName)
	return id, nil
}

// Requests lists all intake requests in creation order.
func (s *Service) Requests(ctx context.Context) ([]Request, error) {
	docs, err := s.store.List(ctx, CollectionRequests)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}

	reqs := make([]Request, 0, len(docs))
	for _, d := range docs {
		var r Request
		if err := json.Unmarshal(d.Doc, &r); err != nil {
			return nil, fmt.Errorf("decoding request %s: %w", d.ID, err)
		}
		r.ID = d.ID
		reqs = append(reqs, r)
	}
	return reqs, nil
}

// Pending lists requests still awaiting conversion.
func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	reqs, err := s.Requests(ctx)
	if err != nil {
		return nil, err
	}
	pending := reqs[:0:0]
	for _, r := range reqs {
		if r.Status == StatusPending {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// Project loads a materialized project by id.
func (s *Service) Project(ctx context.Context, id string) (Project, error) {
	var p Project
	if err := s.store.Get(ctx, CollectionProjects, id, &p); err != nil {
		return Project{}, fmt.Errorf("loading project: %w", err)
	}
	return p, nil
}
