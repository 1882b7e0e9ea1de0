// Package service exposes the generation, analysis and bulk pipelines over
// NATS request/reply. Each subject takes a JSON request and answers with
// either the operation result or an error envelope.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/luxstudio/cuegen/analyze"
	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/bulk"
	"github.com/luxstudio/cuegen/generate"
	"github.com/luxstudio/cuegen/lighting"
	"github.com/luxstudio/cuegen/prompt"
)

// Request/reply subjects served by the server.
const (
	SubjectSceneGenerate     = "cuegen.scene.generate"
	SubjectSequenceCreate    = "cuegen.sequence.create"
	SubjectCueAnalyze        = "cuegen.cue.analyze"
	SubjectCueOptimize       = "cuegen.cue.optimize"
	SubjectFixtureBulkCreate = "cuegen.fixture.bulk-create"
	SubjectCueBulkUpdate     = "cuegen.cue.bulk-update"

	// queueGroup load-balances replicas of this service.
	queueGroup = "cuegen"

	handlerTimeout = 2 * time.Minute
)

// ErrorResponse is the reply envelope for failed requests.
type ErrorResponse struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

// Server subscribes the pipeline to its subjects.
type Server struct {
	conn      *nats.Conn
	logger    *slog.Logger
	scenes    *generate.SceneGenerator
	sequences *generate.CueSequenceSynthesizer
	analyzer  *analyze.CueStructureAnalyzer
	bulk      *bulk.Coordinator
	backend   backend.Service
	subs      []*nats.Subscription
}

// Deps carries the collaborators a Server dispatches to.
type Deps struct {
	Scenes    *generate.SceneGenerator
	Sequences *generate.CueSequenceSynthesizer
	Analyzer  *analyze.CueStructureAnalyzer
	Bulk      *bulk.Coordinator
	Backend   backend.Service
	Logger    *slog.Logger
}

// NewServer creates a server. conn may be nil for direct handler use in
// tests; Start then fails.
func NewServer(conn *nats.Conn, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		conn:      conn,
		logger:    logger,
		scenes:    deps.Scenes,
		sequences: deps.Sequences,
		analyzer:  deps.Analyzer,
		bulk:      deps.Bulk,
		backend:   deps.Backend,
	}
}

type handlerFunc func(ctx context.Context, data []byte) (any, error)

// Start subscribes every subject in the service's queue group.
func (s *Server) Start() error {
	if s.conn == nil {
		return fmt.Errorf("service start: no NATS connection")
	}

	handlers := map[string]handlerFunc{
		SubjectSceneGenerate:     s.handleSceneGenerate,
		SubjectSequenceCreate:    s.handleSequenceCreate,
		SubjectCueAnalyze:        s.handleCueAnalyze,
		SubjectCueOptimize:       s.handleCueOptimize,
		SubjectFixtureBulkCreate: s.handleFixtureBulkCreate,
		SubjectCueBulkUpdate:     s.handleCueBulkUpdate,
	}

	for subject, handler := range handlers {
		sub, err := s.conn.QueueSubscribe(subject, queueGroup, s.wrap(subject, handler))
		if err != nil {
			return fmt.Errorf("service start: subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}

	s.logger.Info("Service started", "subjects", len(handlers), "queue", queueGroup)
	return nil
}

// Stop drains all subscriptions.
func (s *Server) Stop() error {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			return err
		}
	}
	s.subs = nil
	return nil
}

func (s *Server) wrap(subject string, handler handlerFunc) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		reply := s.dispatch(ctx, subject, handler, msg.Data)
		if err := msg.Respond(reply); err != nil {
			s.logger.Error("Reply failed", "subject", subject, "error", err)
		}
	}
}

// dispatch runs one handler and encodes its result or error. It never
// panics outward and always produces a JSON reply.
func (s *Server) dispatch(ctx context.Context, subject string, handler handlerFunc, data []byte) []byte {
	requestID := uuid.New().String()
	start := time.Now()

	result, err := handler(ctx, data)
	requestDuration.WithLabelValues(subject).Observe(time.Since(start).Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(subject, "error").Inc()
		s.logger.Error("Request failed",
			"subject", subject,
			"request_id", requestID,
			"error", err)
		reply, _ := json.Marshal(ErrorResponse{RequestID: requestID, Error: err.Error()})
		return reply
	}

	reply, err := json.Marshal(result)
	if err != nil {
		requestsTotal.WithLabelValues(subject, "error").Inc()
		reply, _ := json.Marshal(ErrorResponse{RequestID: requestID, Error: "encode response: " + err.Error()})
		return reply
	}

	requestsTotal.WithLabelValues(subject, "ok").Inc()
	s.logger.Info("Request served",
		"subject", subject,
		"request_id", requestID,
		"duration", time.Since(start))
	return reply
}

// SceneGenerateRequest asks for a generated scene over the project's
// fixtures, optionally narrowed to a selection.
type SceneGenerateRequest struct {
	ProjectID          string           `json:"projectId"`
	Description        string           `json:"description"`
	Mood               string           `json:"mood,omitempty"`
	SelectedFixtureIDs []string         `json:"selectedFixtureIds,omitempty"`
	Mode               prompt.SceneMode `json:"mode,omitempty"`
}

func (s *Server) handleSceneGenerate(ctx context.Context, data []byte) (any, error) {
	var req SceneGenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	project, err := s.backend.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	return s.scenes.Generate(ctx, generate.GenerateSceneRequest{
		Description:        req.Description,
		Mood:               req.Mood,
		Fixtures:           project.Fixtures,
		SelectedFixtureIDs: req.SelectedFixtureIDs,
		Mode:               req.Mode,
	})
}

func (s *Server) handleSequenceCreate(ctx context.Context, data []byte) (any, error) {
	var req generate.CreateSequenceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return s.sequences.CreateCueSequence(ctx, req)
}

// CueAnalyzeRequest asks for a structural report on one cue list.
type CueAnalyzeRequest struct {
	ProjectID              string `json:"projectId"`
	CueListID              string `json:"cueListId"`
	IncludeRecommendations bool   `json:"includeRecommendations,omitempty"`
}

func (s *Server) handleCueAnalyze(ctx context.Context, data []byte) (any, error) {
	var req CueAnalyzeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return s.analyzer.AnalyzeCueList(ctx, req.ProjectID, req.CueListID, req.IncludeRecommendations)
}

// CueOptimizeRequest asks for a timing-change report under one strategy.
type CueOptimizeRequest struct {
	CueListID string `json:"cueListId"`
	Strategy  string `json:"strategy"`
}

func (s *Server) handleCueOptimize(ctx context.Context, data []byte) (any, error) {
	var req CueOptimizeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	cueList, err := s.backend.GetCueList(ctx, req.CueListID)
	if err != nil {
		return nil, err
	}
	return analyze.OptimizeCueTiming(cueList, req.Strategy)
}

// FixtureBulkCreateRequest asks for best-effort sequential fixture creation.
type FixtureBulkCreateRequest struct {
	ProjectID string             `json:"projectId"`
	Fixtures  []bulk.FixtureSpec `json:"fixtures"`
}

func (s *Server) handleFixtureBulkCreate(ctx context.Context, data []byte) (any, error) {
	var req FixtureBulkCreateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return s.bulk.CreateFixtures(ctx, req.ProjectID, req.Fixtures)
}

// CueBulkUpdateResponse wraps the updated cues.
type CueBulkUpdateResponse struct {
	Cues []lighting.Cue `json:"cues"`
}

func (s *Server) handleCueBulkUpdate(ctx context.Context, data []byte) (any, error) {
	var req backend.BulkCueUpdate
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	cues, err := s.bulk.UpdateCues(ctx, req)
	if err != nil {
		return nil, err
	}
	return CueBulkUpdateResponse{Cues: cues}, nil
}
