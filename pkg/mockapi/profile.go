package mockapi

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
	"github.com/egtaonline/egta-mock/pkg/models"
	"github.com/egtaonline/egta-mock/pkg/stats"
)

// Profile is a handle on one profile record.
type Profile struct {
	srv *Server
	id  int
}

// GetProfile returns a handle on the profile with the given id.
func (s *Server) GetProfile(id int) (*Profile, error) {
	if _, ok := s.profiles.Get(id); !ok {
		return nil, fmt.Errorf("%w: profile %d", apperrors.ErrNotFound, id)
	}
	return &Profile{srv: s, id: id}, nil
}

func (s *Server) profileRecord(id int) (*profileRecord, error) {
	rec, ok := s.profiles.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: profile %d", apperrors.ErrNotFound, id)
	}
	return rec, nil
}

// profileView snapshots the schedule-level projection: identity, shape, and
// accumulated observation count.
func profileView(prof *profileRecord) *models.Profile {
	prof.mu.Lock()
	defer prof.mu.Unlock()
	roleConf := make(map[string]int, len(prof.roleConfig))
	for role, count := range prof.roleConfig {
		roleConf[role] = count
	}
	return &models.Profile{
		Assignment:          prof.assignment,
		CreatedAt:           models.FormatTime(prof.createdAt),
		ID:                  prof.id,
		ObservationsCount:   len(prof.observations),
		RoleConfiguration:   roleConf,
		SimulatorInstanceID: prof.simulatorInstanceID,
		Size:                prof.size,
		UpdatedAt:           models.FormatTime(prof.updatedAt),
	}
}

// ID returns the profile's id.
func (p *Profile) ID() int { return p.id }

// GetInfo returns the projection for the requested granularity. The
// concrete type depends on the granularity; callers that know which level
// they want should use the typed accessors.
func (p *Profile) GetInfo(g models.Granularity) (any, error) {
	switch g {
	case models.GranularityStructure:
		return p.GetStructure()
	case models.GranularitySummary:
		return p.GetSummary()
	case models.GranularityObservations:
		return p.GetObservations()
	case models.GranularityFull:
		return p.GetFullData()
	}
	return nil, fmt.Errorf("%w: %q is not a valid granularity",
		apperrors.ErrMalformedInput, g)
}

// GetStructure returns the entity shape with no payoff values. Role counts
// are rendered as strings at this granularity, as the real service does.
func (p *Profile) GetStructure() (*models.ProfileStructure, error) {
	prof, err := p.srv.profileRecord(p.id)
	if err != nil {
		return nil, err
	}
	prof.mu.Lock()
	defer prof.mu.Unlock()
	roleConf := make(map[string]string, len(prof.roleConfig))
	for role, count := range prof.roleConfig {
		roleConf[role] = strconv.Itoa(count)
	}
	return &models.ProfileStructure{
		Assignment:          prof.assignment,
		CreatedAt:           models.FormatTime(prof.createdAt),
		ID:                  prof.id,
		ObservationsCount:   len(prof.observations),
		RoleConfiguration:   roleConf,
		SimulatorInstanceID: prof.simulatorInstanceID,
		Size:                prof.size,
		UpdatedAt:           models.FormatTime(prof.updatedAt),
	}, nil
}

// GetSummary returns one aggregated (mean, sample stddev) payoff per
// symmetry group across all observations. The stddev is nil below two
// samples; a group with no samples at all reports a NaN mean.
func (p *Profile) GetSummary() (*models.ProfileSummary, error) {
	prof, err := p.srv.profileRecord(p.id)
	if err != nil {
		return nil, err
	}
	prof.mu.Lock()
	defer prof.mu.Unlock()
	return summarizeLocked(prof), nil
}

// summarizeLocked aggregates under the caller-held profile lock.
func summarizeLocked(prof *profileRecord) *models.ProfileSummary {
	agg := stats.NewGroupMeans()
	for _, obs := range prof.observations {
		for _, pay := range obs.payoffs {
			agg.Add(pay.groupID, pay.value)
		}
	}
	groups := make([]models.SymmetryGroupSummary, len(prof.symmetryGroups))
	for i, g := range prof.symmetryGroups {
		summary := models.SymmetryGroupSummary{
			ID:       g.ID,
			Role:     g.Role,
			Strategy: g.Strategy,
			Count:    g.Count,
			Payoff:   math.NaN(),
		}
		if acc := agg.Get(g.ID); acc != nil {
			summary.Payoff = acc.Mean()
			summary.PayoffSD = acc.SampleStdDev()
		}
		groups[i] = summary
	}
	return &models.ProfileSummary{
		ID:                  prof.id,
		ObservationsCount:   len(prof.observations),
		SimulatorInstanceID: prof.simulatorInstanceID,
		SymmetryGroups:      groups,
	}
}

// GetObservations returns per-observation payoffs grouped by symmetry
// group, with individual player identity erased.
func (p *Profile) GetObservations() (*models.ProfileObservations, error) {
	prof, err := p.srv.profileRecord(p.id)
	if err != nil {
		return nil, err
	}
	prof.mu.Lock()
	defer prof.mu.Unlock()
	return observationsLocked(prof), nil
}

func observationsLocked(prof *profileRecord) *models.ProfileObservations {
	observations := make([]models.GroupedObservation, len(prof.observations))
	for i, obs := range prof.observations {
		observations[i] = models.GroupedObservation{
			ExtendedFeatures: map[string]any{},
			Features:         map[string]any{},
			SymmetryGroups:   groupPayoffs(obs),
		}
	}
	return &models.ProfileObservations{
		ID:                  prof.id,
		Observations:        observations,
		SimulatorInstanceID: prof.simulatorInstanceID,
		SymmetryGroups:      slices.Clone(prof.symmetryGroups),
	}
}

// groupPayoffs averages one observation's payoffs within each symmetry
// group, in first-appearance order.
func groupPayoffs(obs *observationRecord) []models.GroupPayoff {
	agg := stats.NewGroupMeans()
	var order []int
	seen := make(map[int]bool)
	for _, pay := range obs.payoffs {
		if !seen[pay.groupID] {
			seen[pay.groupID] = true
			order = append(order, pay.groupID)
		}
		agg.Add(pay.groupID, pay.value)
	}
	groups := make([]models.GroupPayoff, len(order))
	for i, gid := range order {
		groups[i] = models.GroupPayoff{
			ID:     gid,
			Payoff: agg.Get(gid).Mean(),
			// Per-observation stddev is never reported at this granularity.
			PayoffSD: nil,
		}
	}
	return groups
}

// GetFullData returns per-observation, per-player payoffs with symmetry
// group tagging preserved.
func (p *Profile) GetFullData() (*models.ProfileFull, error) {
	prof, err := p.srv.profileRecord(p.id)
	if err != nil {
		return nil, err
	}
	prof.mu.Lock()
	defer prof.mu.Unlock()
	return fullDataLocked(prof), nil
}

func fullDataLocked(prof *profileRecord) *models.ProfileFull {
	observations := make([]models.FullObservation, len(prof.observations))
	for i, obs := range prof.observations {
		players := make([]models.PlayerPayoff, len(obs.payoffs))
		for j, pay := range obs.payoffs {
			players[j] = models.PlayerPayoff{
				E:   map[string]any{},
				F:   map[string]any{},
				P:   pay.value,
				SID: pay.groupID,
			}
		}
		observations[i] = models.FullObservation{
			ExtendedFeatures: map[string]any{},
			Features:         map[string]any{},
			Players:          players,
		}
	}
	return &models.ProfileFull{
		ID:                  prof.id,
		Observations:        observations,
		SimulatorInstanceID: prof.simulatorInstanceID,
		SymmetryGroups:      slices.Clone(prof.symmetryGroups),
	}
}
