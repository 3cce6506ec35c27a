package mockapi

import (
	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/metrics"
)

// ensureObservations catches a profile up to count observations. Each new
// observation carries one uniform payoff sample per player slot in every
// symmetry group and is registered in the global folder index with
// denormalized listing fields. The profile lock is held for the whole
// catch-up loop, so concurrent calls never generate past count.
func (s *Server) ensureObservations(prof *profileRecord, sched *schedRecord, count int) {
	sim, err := s.simRecord(sched.simulatorID)
	if err != nil {
		// The simulator id was validated at scheduler creation and
		// simulators are never destroyed; nothing to schedule without it.
		s.logger.Warn("scheduling skipped: simulator missing",
			zap.Int("simulator_id", sched.simulatorID), zap.Error(err))
		return
	}
	fullName := sim.fullName()

	prof.mu.Lock()
	defer prof.mu.Unlock()
	if len(prof.observations) >= count {
		return
	}
	generated := 0
	for len(prof.observations) < count {
		payoffs := make([]payoff, 0, prof.size)
		for _, g := range prof.symmetryGroups {
			for i := 0; i < g.Count; i++ {
				payoffs = append(payoffs, payoff{groupID: g.ID, value: s.randPayoff()})
			}
		}
		obs := s.newFolder(prof, fullName)
		obs.payoffs = payoffs
		prof.observations = append(prof.observations, obs)
		generated++
	}
	prof.updatedAt = now()
	metrics.ObservationsSynthesized.Add(float64(generated))
	s.logger.Debug("synthesized observations",
		zap.Int("profile", prof.id), zap.Int("generated", generated),
		zap.Int("total", len(prof.observations)))
}

// newFolder allocates the next global folder index and registers the
// observation in the flat listing. Folder indices are monotone in creation
// order, giving a stable chronological listing across profiles.
func (s *Server) newFolder(prof *profileRecord, simulatorFullName string) *observationRecord {
	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()
	obs := &observationRecord{
		folder:              len(s.folders),
		profile:             prof.assignment,
		simulator:           simulatorFullName,
		simulatorInstanceID: prof.simulatorInstanceID,
		size:                prof.size,
	}
	s.folders = append(s.folders, obs)
	return obs
}
