package mockapi

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
	"github.com/egtaonline/egta-mock/pkg/metrics"
	"github.com/egtaonline/egta-mock/pkg/models"
)

// instanceRecord is one deployable configuration of a simulator: the unit of
// profile-pool sharing between schedulers and games. mu makes the
// check-then-create profile resolution atomic.
type instanceRecord struct {
	mu sync.Mutex
	id int
	// profiles is keyed by the literal assignment string. No
	// canonicalization happens at this layer: textually distinct but
	// semantically equal assignments map to distinct profiles, matching the
	// real service.
	profiles map[string]*profileRecord
}

// profileRecord is the mutable backing store for one profile. mu guards the
// observation list and is held for the whole catch-up loop so concurrent
// scheduling never double-generates.
type profileRecord struct {
	mu                  sync.Mutex
	id                  int
	assignment          string
	simulatorInstanceID int
	roleConfig          map[string]int
	// symmetryGroups is immutable after creation.
	symmetryGroups []models.SymmetryGroup
	size           int
	observations   []*observationRecord
	createdAt      time.Time
	updatedAt      time.Time
}

// payoff is one player slot's sampled payoff, tagged with its symmetry
// group.
type payoff struct {
	groupID int
	value   float64
}

// observationRecord is one synthetic simulation run. It doubles as the
// global folder entry, carrying denormalized fields for the simulation
// listing.
type observationRecord struct {
	folder              int
	profile             string // assignment
	simulator           string // simulator fullname
	simulatorInstanceID int
	size                int
	payoffs             []payoff
}

// getOrCreateProfile resolves an assignment to its canonical profile under
// the scheduler's simulator instance, creating and validating it on first
// reference. The instance lock serializes check-then-create.
func (s *Server) getOrCreateProfile(sched *schedRecord, assignment string) (*profileRecord, error) {
	inst, ok := s.instances.Get(sched.simulatorInstanceID)
	if !ok {
		return nil, fmt.Errorf("%w: simulator instance %d",
			apperrors.ErrNotFound, sched.simulatorInstanceID)
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if prof, ok := inst.profiles[assignment]; ok {
		metrics.ProfilesDeduplicated.Inc()
		return prof, nil
	}

	groups, err := s.assignGroups(assignment)
	if err != nil {
		return nil, err
	}

	sim, err := s.simRecord(sched.simulatorID)
	if err != nil {
		return nil, err
	}
	sim.mu.Lock()
	for _, g := range groups {
		strats, ok := sim.roleConfig[g.Role]
		if !ok {
			sim.mu.Unlock()
			return nil, fmt.Errorf("%w: simulator %d does not declare role %q",
				apperrors.ErrInvalidReference, sim.id, g.Role)
		}
		if !slices.Contains(strats, g.Strategy) {
			sim.mu.Unlock()
			return nil, fmt.Errorf("%w: simulator %d role %q does not declare strategy %q",
				apperrors.ErrInvalidReference, sim.id, g.Role, g.Strategy)
		}
	}
	sim.mu.Unlock()

	roleConf := make(map[string]int)
	size := 0
	for _, g := range groups {
		roleConf[g.Role] += g.Count
		size += g.Count
	}
	if !sameRoleCounts(roleConf, sched.snapshotRoleConfig()) {
		return nil, fmt.Errorf("%w: assignment %q does not partition scheduler %d's roles",
			apperrors.ErrInvalidReference, assignment, sched.id)
	}

	ts := now()
	_, prof := s.profiles.Allocate(func(id int) *profileRecord {
		return &profileRecord{
			id:                  id,
			assignment:          assignment,
			simulatorInstanceID: sched.simulatorInstanceID,
			roleConfig:          roleConf,
			symmetryGroups:      groups,
			size:                size,
			createdAt:           ts,
			updatedAt:           ts,
		}
	})
	inst.profiles[assignment] = prof
	metrics.EntitiesCreated.WithLabelValues("profile").Inc()
	s.logger.Debug("created profile",
		zap.Int("id", prof.id), zap.String("assignment", assignment),
		zap.Int("instance", sched.simulatorInstanceID))
	return prof, nil
}

// observationCount reads the profile's current observation count.
func (p *profileRecord) observationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.observations)
}

func sameRoleCounts(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for role, count := range a {
		if b[role] != count {
			return false
		}
	}
	return true
}
