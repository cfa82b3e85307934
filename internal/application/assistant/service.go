// Package assistant implements the question answering pipeline: routing,
// safety screening, entity and section resolution, layered retrieval and
// answer composition.
package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediclic/vademecum-ai/internal/application/guard"
	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/resolve"
	"github.com/mediclic/vademecum-ai/internal/domain/section"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/database/redis"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/llm"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/messaging/kafka"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// Outcome labels, shared by responses, metrics and analytics events.
const (
	outcomeAnswered      = "answered"
	outcomeSubstituted   = "substituted"
	outcomeClarification = "clarification"
	outcomeGuarded       = "guarded"
	outcomeSmalltalk     = "smalltalk"
	outcomeCare          = "care"
	outcomeNoData        = "no_data"
)

// Store is the retrieval surface the pipeline needs from the document store.
type Store interface {
	FetchBySectionAndName(ctx context.Context, sec section.Section, nameHint string, limit int) ([]record.Record, error)
	SearchByName(ctx context.Context, nameHint string, limit int) ([]record.Record, error)
}

// Sessions is the conversation memory surface.
type Sessions interface {
	LastDrug(ctx context.Context, userID string) string
	SetLastDrug(ctx context.Context, userID, drug string)
	AppendHistory(ctx context.Context, userID string, turn redis.Turn)
}

// Events receives resolution analytics.
type Events interface {
	Publish(ctx context.Context, ev kafka.ResolutionEvent)
}

// Answer is the pipeline's reply to one query.
type Answer struct {
	QueryID     string          `json:"query_id"`
	Reply       string          `json:"reply"`
	Drug        string          `json:"drug,omitempty"`
	Section     section.Section `json:"section,omitempty"`
	Source      resolve.Source  `json:"source,omitempty"`
	Substituted bool            `json:"substituted,omitempty"`
	Outcome     string          `json:"outcome"`
	CTAs        []guard.CTA     `json:"ctas,omitempty"`
}

// Service answers natural-language medication questions.
type Service interface {
	Answer(ctx context.Context, userID, query string) (Answer, error)
}

type service struct {
	store    Store
	sessions Sessions
	resolver *resolve.Resolver
	rewriter llm.Rewriter
	events   Events
	metrics  *prometheus.Metrics
	logger   logging.Logger
	cfg      config.EngineConfig
	loc      *time.Location
}

// NewService wires the pipeline. rewriter and events may be nil; metrics
// must not be.
func NewService(
	store Store,
	sessions Sessions,
	resolver *resolve.Resolver,
	rewriter llm.Rewriter,
	events Events,
	metrics *prometheus.Metrics,
	cfg config.EngineConfig,
	logger logging.Logger,
) Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		loc = time.Local
	}
	return &service{
		store:    store,
		sessions: sessions,
		resolver: resolver,
		rewriter: rewriter,
		events:   events,
		metrics:  metrics,
		logger:   logger.Named("assistant"),
		cfg:      cfg,
		loc:      loc,
	}
}

func (s *service) Answer(ctx context.Context, userID, query string) (Answer, error) {
	if query == "" {
		return Answer{}, apperrors.New(apperrors.ErrCodeValidation, "query must not be empty")
	}
	queryID := uuid.NewString()

	// Social and situational routes never touch retrieval.
	if reply, outcome, ok := routeSmalltalk(query, time.Now().In(s.loc)); ok {
		ans := Answer{QueryID: queryID, Reply: reply, Outcome: outcome}
		s.finish(ctx, userID, query, ans)
		return ans, nil
	}

	if v := guard.Screen(query); v.Blocked {
		s.metrics.GuardBlocksTotal.WithLabelValues(string(v.Rule)).Inc()
		ans := Answer{QueryID: queryID, Reply: v.Reply, Outcome: outcomeGuarded, CTAs: v.CTAs}
		s.finish(ctx, userID, query, ans)
		return ans, nil
	}

	lastDrug := ""
	if userID != "" {
		lastDrug = s.sessions.LastDrug(ctx, userID)
	}

	res, resolved := s.resolver.Resolve(ctx, query, lastDrug)
	if !resolved {
		ans := Answer{QueryID: queryID, Reply: clarificationReply, Outcome: outcomeClarification}
		s.metrics.QueriesTotal.WithLabelValues("none", outcomeClarification).Inc()
		s.finish(ctx, userID, query, ans)
		return ans, nil
	}

	sec, _ := section.Classify(query)

	ret := s.retrieve(ctx, res, sec)

	ans := Answer{
		QueryID:     queryID,
		Drug:        res.Display,
		Section:     sec,
		Source:      res.Source,
		Substituted: ret.substituted,
	}
	switch {
	case ret.substituted:
		ans.Outcome = outcomeSubstituted
		ans.Reply = composeSubstituted(res.Display, sec, ret.served, ret.fragment)
		s.metrics.SectionSubstitutionsTotal.Inc()
	case ret.fragment != "" && ret.served == sec:
		ans.Outcome = outcomeAnswered
		ans.Reply = composeSection(res.Display, sec, ret.fragment)
	case ret.fragment != "":
		ans.Outcome = outcomeAnswered
		ans.Reply = composeAny(res.Display, ret.fragment)
	default:
		ans.Outcome = outcomeNoData
		ans.Reply = composeNoData(res.Display, sec)
	}

	if ans.Outcome != outcomeNoData {
		ans.Reply = s.rewrite(ctx, ans.Reply)
	}

	if userID != "" {
		s.sessions.SetLastDrug(ctx, userID, res.Normalized)
	}
	s.metrics.QueriesTotal.WithLabelValues(string(sec), ans.Outcome).Inc()
	s.finish(ctx, userID, query, ans)
	return ans, nil
}

type retrieval struct {
	fragment    string
	served      section.Section
	substituted bool
}

// retrieve runs the layered retrieval chain: exact section pass, broad
// metadata-first retry, and only then the contraindications-to-warnings
// substitution with its own broad retry. A store failure on any tier is
// treated as zero candidates on that tier; the chain always ends in a
// retrieval value so every query terminates in a textual reply.
func (s *service) retrieve(ctx context.Context, res resolve.Resolution, sec section.Section) retrieval {
	if frag, ok := s.sectionPass(ctx, res, sec, "exact"); ok {
		return retrieval{fragment: frag, served: sec}
	}
	if frag, served, ok := s.broadPass(ctx, res, sec); ok {
		return retrieval{fragment: frag, served: served}
	}

	if sec == section.Contraindications {
		if frag, ok := s.sectionPass(ctx, res, section.Warnings, "substitute"); ok {
			return retrieval{fragment: frag, served: section.Warnings, substituted: true}
		}
		if frag, served, ok := s.broadPass(ctx, res, section.Warnings); ok && served == section.Warnings {
			return retrieval{fragment: frag, served: served, substituted: true}
		}
	}
	return retrieval{}
}

func (s *service) sectionPass(ctx context.Context, res resolve.Resolution, sec section.Section, pass string) (string, bool) {
	start := time.Now()
	recs, err := s.store.FetchBySectionAndName(ctx, sec, res.Normalized, s.cfg.ExactFetchLimit)
	s.metrics.RetrievalDuration.WithLabelValues(pass).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("section pass failed",
			logging.String("pass", pass),
			logging.String("section", string(sec)),
			logging.Err(err))
		return "", false
	}

	group, ok := pickBestGroup(groupByDrug(recs), res.Normalized)
	if !ok {
		return "", false
	}
	rec, ok := pickBestRecord(group, sec)
	if !ok {
		return "", false
	}
	if frag := rec.SectionText(sec); frag != "" {
		return frag, true
	}
	return "", false
}

// broadPass retries across every section of the resolved drug. It only
// answers from a record whose canonical section equals the request; when
// that record has no section prose left, its remaining prose is served as
// general information (served is empty then, so the composer labels it so).
func (s *service) broadPass(ctx context.Context, res resolve.Resolution, sec section.Section) (string, section.Section, bool) {
	start := time.Now()
	recs, err := s.store.SearchByName(ctx, res.Normalized, s.cfg.BroadFetchLimit)
	s.metrics.RetrievalDuration.WithLabelValues("broad").Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("broad pass failed", logging.Err(err))
		return "", "", false
	}

	group, ok := pickBestGroup(groupByDrug(recs), res.Normalized)
	if !ok {
		return "", "", false
	}
	rec, ok := pickBestRecord(group, sec)
	if !ok || rec.Section != sec {
		return "", "", false
	}
	if frag := rec.SectionText(sec); frag != "" {
		return frag, sec, true
	}
	if frag := rec.AnyText(); frag != "" {
		return frag, "", true
	}
	return "", "", false
}

// rewrite smooths the template answer when a rewriter is wired; any failure
// keeps the deterministic text.
func (s *service) rewrite(ctx context.Context, draft string) string {
	if s.rewriter == nil {
		return draft
	}
	out, err := s.rewriter.Rewrite(ctx, draft)
	if err != nil {
		s.metrics.RewriteFallbacksTotal.Inc()
		s.logger.Warn("rewrite failed, serving template", logging.Err(err))
		return draft
	}
	return out
}

// finish persists the turn and emits the analytics event.
func (s *service) finish(ctx context.Context, userID, query string, ans Answer) {
	if userID != "" {
		s.sessions.AppendHistory(ctx, userID, redis.Turn{Role: "user", Content: query})
		s.sessions.AppendHistory(ctx, userID, redis.Turn{Role: "assistant", Content: ans.Reply})
	}
	if s.events != nil {
		s.events.Publish(ctx, kafka.ResolutionEvent{
			QueryID:     ans.QueryID,
			UserID:      userID,
			Drug:        ans.Drug,
			Section:     string(ans.Section),
			Source:      string(ans.Source),
			Outcome:     ans.Outcome,
			Substituted: ans.Substituted,
		})
	}
}
