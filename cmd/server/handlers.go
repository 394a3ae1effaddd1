package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/Simplici0/staffquote/internal/metrics"
	"github.com/Simplici0/staffquote/internal/pricing"
	"github.com/Simplici0/staffquote/internal/proposals"
	"github.com/Simplici0/staffquote/internal/rules"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

type server struct {
	db        *sql.DB
	engine    *pricing.Engine
	rules     rules.Repository
	proposals *proposals.Store
	schema    *gojsonschema.Schema
	log       *zap.Logger
}

func newServer(db *sql.DB, engine *pricing.Engine, repo rules.Repository, store *proposals.Store, log *zap.Logger) (*server, error) {
	schema, err := compileProposalSchema()
	if err != nil {
		return nil, err
	}
	return &server{
		db:        db,
		engine:    engine,
		rules:     repo,
		proposals: store,
		schema:    schema,
		log:       log,
	}, nil
}

// proposalRequest is the body of the pricing endpoints.
type proposalRequest struct {
	Title     string                    `json:"title"`
	Client    string                    `json:"client"`
	Save      bool                      `json:"save"`
	Positions []pricing.PositionRequest `json:"positions"`
	Rules     []pricing.Rule            `json:"rules"`
	Defaults  json.RawMessage           `json:"defaults"`
}

type errorResponse struct {
	Error  string          `json:"error"`
	Issues []pricing.Issue `json:"issues,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePreviewProposal(w http.ResponseWriter, r *http.Request) {
	_, _, res, err := s.priceRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	req, body, res, err := s.priceRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !req.Save {
		writeJSON(w, http.StatusOK, res)
		return
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.proposals.Save(r.Context(), proposals.Snapshot{
		Title:   req.Title,
		Client:  req.Client,
		Request: json.RawMessage(compact.Bytes()),
		Result:  res,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("proposal saved", zap.String("proposal_id", snap.ID), zap.String("title", snap.Title))
	writeJSON(w, http.StatusCreated, snap)
}

func (s *server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := s.proposals.List(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	snap, err := s.proposals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleProposalText(w http.ResponseWriter, r *http.Request) {
	snap, err := s.proposals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := proposals.WriteStatement(&buf, snap); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *server) handleListRules(w http.ResponseWriter, r *http.Request) {
	list, err := s.rules.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	var rule pricing.Rule
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rule); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid rule JSON: %v", errBadRequest, err))
		return
	}
	rule.ID = chi.URLParam(r, "id")

	if err := s.rules.Upsert(r.Context(), rule); err != nil {
		s.writeError(w, err)
		return
	}
	metrics.AddFunctions(rule.Function)
	s.log.Info("rule upserted", zap.String("rule_id", rule.ID), zap.String("function", rule.Function))
	writeJSON(w, http.StatusOK, rule)
}

func (s *server) handleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.rules.Deactivate(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("rule deactivated", zap.String("rule_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// priceRequest decodes, validates and prices a proposal request. It returns
// the raw body so callers can store it verbatim.
func (s *server) priceRequest(w http.ResponseWriter, r *http.Request) (proposalRequest, []byte, pricing.ProposalResult, error) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return proposalRequest{}, nil, pricing.ProposalResult{}, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}

	req, quote, err := s.decodeQuote(r.Context(), body)
	if err != nil {
		s.observe(err, start, pricing.ProposalResult{})
		return proposalRequest{}, nil, pricing.ProposalResult{}, err
	}

	res, err := s.engine.Aggregate(r.Context(), quote)
	s.observe(err, start, res)
	if err != nil {
		return proposalRequest{}, nil, pricing.ProposalResult{}, err
	}

	for _, p := range res.Positions {
		switch {
		case p.FromDefaults:
			s.log.Debug("no rule matched, priced from defaults",
				zap.String("proposal_id", res.ID),
				zap.String("function", p.Request.Function),
				zap.String("state", p.Request.State))
		case p.FallbackRule:
			s.log.Info("no rule matched, priced from designated rule",
				zap.String("proposal_id", res.ID),
				zap.String("rule_id", p.RuleID),
				zap.String("function", p.Request.Function),
				zap.String("state", p.Request.State))
		}
	}
	s.log.Info("proposal priced",
		zap.String("proposal_id", res.ID),
		zap.Int("positions", len(res.Positions)),
		zap.Float64("monthly_total", res.Summary.MonthlyTotal),
		zap.Duration("elapsed", time.Since(start)))

	return req, body, res, nil
}

func (s *server) decodeQuote(ctx context.Context, body []byte) (proposalRequest, pricing.Quote, error) {
	if err := checkSchema(s.schema, body); err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			return proposalRequest{}, pricing.Quote{}, err
		}
		return proposalRequest{}, pricing.Quote{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	var req proposalRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return proposalRequest{}, pricing.Quote{}, fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}

	quote := pricing.Quote{Positions: req.Positions, Rules: req.Rules}

	if len(req.Defaults) > 0 && !bytes.Equal(req.Defaults, []byte("null")) {
		d := s.engine.Defaults()
		if err := json.Unmarshal(req.Defaults, &d); err != nil {
			return proposalRequest{}, pricing.Quote{}, fmt.Errorf("%w: decode defaults: %v", errBadRequest, err)
		}
		quote.Defaults = &d
	}

	if len(quote.Rules) == 0 {
		stored, err := s.rules.List(ctx)
		if err != nil {
			return proposalRequest{}, pricing.Quote{}, fmt.Errorf("load rules: %w", err)
		}
		quote.Rules = stored
	}

	return req, quote, nil
}

func (s *server) observe(err error, start time.Time, res pricing.ProposalResult) {
	outcome := metrics.OutcomePriced
	switch {
	case err == nil:
	case errors.Is(err, pricing.ErrInvalidInput), errors.Is(err, errBadRequest):
		outcome = metrics.OutcomeInvalid
	case errors.Is(err, pricing.ErrTaxConfiguration):
		outcome = metrics.OutcomeTaxConfig
	case errors.Is(err, pricing.ErrRuleConfiguration):
		outcome = metrics.OutcomeRuleConfig
	default:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveProposal(outcome, time.Since(start), res)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	var verr *pricing.ValidationError
	var terr *pricing.TaxConfigError
	var rerr *pricing.RuleConfigError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Issues: verr.Issues})
	case errors.Is(err, errBadRequest), errors.Is(err, rules.ErrInvalidRule):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &terr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: terr.Error()})
	case errors.As(err, &rerr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: rerr.Error()})
	case errors.Is(err, proposals.ErrNotFound), errors.Is(err, rules.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
