package matching

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"careflow/internal/jurisdiction"
	"careflow/internal/matching/metrics"
	"careflow/internal/placement"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks RiskReader

// RiskReader supplies a provider's current breakdown-risk score. Implemented
// by the risk service; unknown providers score zero.
type RiskReader interface {
	ProviderRisk(ctx context.Context, providerID id.ProviderID) (float64, error)
}

// Service ranks a candidate pool for one child. It holds no provider state
// of its own; the pool arrives with the request from the provider directory.
type Service struct {
	risk    RiskReader
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(risk RiskReader, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{risk: risk, logger: logger, metrics: m}
}

// Request is one matching run.
type Request struct {
	Profile     Profile
	Type        placement.Type
	Preferences Preferences
	// Pool is the candidate set from the provider directory. An empty pool is
	// a valid request and yields an empty ranking.
	Pool []Provider
}

// Result is the ranked outcome plus the parameters that produced it.
type Result struct {
	Candidates     []Candidate
	WeightsVersion string
	Weights        Weights
	Urgency        Urgency
}

// FindMatches filters the pool through the hard eligibility gate, scores the
// survivors, and returns them ranked. Ordering is fully deterministic: score
// descending, then provider risk ascending, then distance ascending, then
// provider ID. Risk deprioritizes within a score tie but never excludes.
func (s *Service) FindMatches(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	if err := jurisdiction.ValidateStatus(req.Profile.Jurisdiction, req.Profile.LegalStatus); err != nil {
		return Result{}, err
	}
	if !req.Type.IsValid() {
		return Result{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown placement type %q", req.Type)
	}

	weights, err := forRequest(req.Preferences)
	if err != nil {
		return Result{}, err
	}
	urgency := req.Preferences.Urgency
	if urgency == "" {
		urgency = UrgencyStandard
	}

	candidates := make([]Candidate, 0, len(req.Pool))
	for _, provider := range req.Pool {
		if !eligible(provider, req.Type) {
			continue
		}
		riskScore, err := s.risk.ProviderRisk(ctx, provider.ID)
		if err != nil {
			return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "load provider risk")
		}
		candidates = append(candidates, score(req.Profile, provider, weights, riskScore))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.RiskScore != b.RiskScore {
			return a.RiskScore < b.RiskScore
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.ProviderID.String() < b.ProviderID.String()
	})

	s.metrics.IncrementRuns(string(urgency))
	s.metrics.ObserveCandidates(len(candidates))
	s.metrics.ObserveMatchLatency(time.Since(start))

	s.logger.InfoContext(ctx, "matching run completed",
		"child_id", req.Profile.ChildID.String(),
		"pool_size", len(req.Pool),
		"eligible", len(candidates),
		"urgency", string(urgency),
	)

	return Result{
		Candidates:     candidates,
		WeightsVersion: WeightsVersion,
		Weights:        weights,
		Urgency:        urgency,
	}, nil
}

// eligible is the hard gate: a free bed, valid registration, valid staff
// vetting, and the requested care setting. Failing any one removes the
// provider from scoring entirely.
func eligible(p Provider, t placement.Type) bool {
	return p.Vacancies > 0 && p.RegistrationValid && p.DBSValid && p.Supports(t)
}
