package mockapi

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
	"github.com/egtaonline/egta-mock/pkg/metrics"
	"github.com/egtaonline/egta-mock/pkg/models"
)

// simRecord is the mutable backing store for one simulator. mu guards every
// field mutation, held for the whole edit including the updatedAt stamp so
// readers see a consistent snapshot.
type simRecord struct {
	mu            sync.Mutex
	id            int
	name          string
	version       string
	email         string
	configuration map[string]string
	// roleConfig maps role to its strategies, kept sorted with duplicate
	// inserts suppressed.
	roleConfig map[string][]string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewSimulator describes a simulator to create. Name defaults to
// "sim_<id>"; Email defaults to the configured contact.
type NewSimulator struct {
	Name          string
	Version       string
	Email         string
	Configuration map[string]string
}

// Simulator is a handle on one simulator record.
type Simulator struct {
	srv *Server
	id  int
}

// CreateSimulator registers a simulator. The (name, version) pair must be
// unique among live simulators.
func (s *Server) CreateSimulator(req NewSimulator) (*Simulator, error) {
	email := req.Email
	if email == "" {
		email = s.cfg.DefaultEmail
	}
	conf := req.Configuration
	if conf == nil {
		conf = map[string]string{}
	}

	s.simsMu.Lock()
	defer s.simsMu.Unlock()
	name := req.Name
	if name == "" {
		// Creation is serialized on simsMu, so the next arena id is stable.
		name = fmt.Sprintf("sim_%d", s.sims.Len())
	}
	if _, exists := s.simsByName[name][req.Version]; exists {
		return nil, fmt.Errorf("%w: simulator %s version %q already exists",
			apperrors.ErrConflict, name, req.Version)
	}
	ts := now()
	id, rec := s.sims.Allocate(func(id int) *simRecord {
		return &simRecord{
			id:            id,
			name:          name,
			version:       req.Version,
			email:         email,
			configuration: conf,
			roleConfig:    make(map[string][]string),
			createdAt:     ts,
			updatedAt:     ts,
		}
	})
	if s.simsByName[name] == nil {
		s.simsByName[name] = make(map[string]*simRecord)
	}
	s.simsByName[name][req.Version] = rec
	metrics.EntitiesCreated.WithLabelValues("simulator").Inc()
	s.logger.Debug("created simulator",
		zap.Int("id", id), zap.String("name", name), zap.String("version", req.Version))
	return &Simulator{srv: s, id: id}, nil
}

// GetSimulator returns a handle on the simulator with the given id.
func (s *Server) GetSimulator(id int) (*Simulator, error) {
	if _, ok := s.sims.Get(id); !ok {
		return nil, fmt.Errorf("%w: simulator %d", apperrors.ErrNotFound, id)
	}
	return &Simulator{srv: s, id: id}, nil
}

// GetSimulatorByName resolves a simulator by name alone. It fails when the
// name is unknown or has multiple live versions.
func (s *Server) GetSimulatorByName(name string) (*Simulator, error) {
	s.simsMu.Lock()
	defer s.simsMu.Unlock()
	versions := s.simsByName[name]
	switch len(versions) {
	case 0:
		return nil, fmt.Errorf("%w: simulator %s", apperrors.ErrNotFound, name)
	case 1:
		for _, rec := range versions {
			return &Simulator{srv: s, id: rec.id}, nil
		}
	}
	return nil, fmt.Errorf("%w: simulator %s has multiple versions",
		apperrors.ErrConflict, name)
}

// GetSimulatorVersion resolves a simulator by its (name, version) pair.
func (s *Server) GetSimulatorVersion(name, version string) (*Simulator, error) {
	s.simsMu.Lock()
	defer s.simsMu.Unlock()
	rec, ok := s.simsByName[name][version]
	if !ok {
		return nil, fmt.Errorf("%w: simulator %s version %q",
			apperrors.ErrNotFound, name, version)
	}
	return &Simulator{srv: s, id: rec.id}, nil
}

// Simulators returns read-only projections of every live simulator in id
// order.
func (s *Server) Simulators() []*models.Simulator {
	var views []*models.Simulator
	s.sims.ForEachLive(func(id int, rec *simRecord) bool {
		views = append(views, s.simulatorView(rec))
		return true
	})
	return views
}

func (s *Server) simRecord(id int) (*simRecord, error) {
	rec, ok := s.sims.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: simulator %d", apperrors.ErrNotFound, id)
	}
	return rec, nil
}

// simulatorView snapshots a record into its read-only projection.
func (s *Server) simulatorView(rec *simRecord) *models.Simulator {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	roleConf := make(map[string][]string, len(rec.roleConfig))
	for role, strats := range rec.roleConfig {
		roleConf[role] = slices.Clone(strats)
	}
	conf := make(map[string]string, len(rec.configuration))
	for k, v := range rec.configuration {
		conf[k] = v
	}
	return &models.Simulator{
		Configuration:     conf,
		CreatedAt:         models.FormatTime(rec.createdAt),
		Email:             rec.email,
		ID:                rec.id,
		Name:              rec.name,
		RoleConfiguration: roleConf,
		Source: models.Source{
			URL: fmt.Sprintf("/uploads/simulator/source/%d/%s-%s.zip",
				rec.id, rec.name, rec.version),
		},
		UpdatedAt: models.FormatTime(rec.updatedAt),
		URL:       fmt.Sprintf("https://%s/simulators/%d", s.cfg.Domain, rec.id),
		Version:   rec.version,
	}
}

// fullName is the name-version composite used in simulation listings.
func (rec *simRecord) fullName() string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.name + "-" + rec.version
}

// ID returns the simulator's id.
func (sim *Simulator) ID() int { return sim.id }

// GetInfo returns the simulator's read-only projection.
func (sim *Simulator) GetInfo() (*models.Simulator, error) {
	rec, err := sim.srv.simRecord(sim.id)
	if err != nil {
		return nil, err
	}
	return sim.srv.simulatorView(rec), nil
}

// AddRole declares a role. Re-adding an existing role is a no-op that adds
// no strategies; the update stamp still moves.
func (sim *Simulator) AddRole(role string) error {
	rec, err := sim.srv.simRecord(sim.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.addRoleLocked(role)
	rec.updatedAt = now()
	return nil
}

// RemoveRole removes a role and its strategies. Unlike strategy removal,
// removing an absent role is an error.
func (sim *Simulator) RemoveRole(role string) error {
	rec, err := sim.srv.simRecord(sim.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, ok := rec.roleConfig[role]; !ok {
		return fmt.Errorf("%w: simulator %d does not declare role %q",
			apperrors.ErrInvalidReference, sim.id, role)
	}
	delete(rec.roleConfig, role)
	rec.updatedAt = now()
	return nil
}

// AddStrategy adds a strategy to a declared role, keeping the strategy set
// sorted and suppressing duplicates.
func (sim *Simulator) AddStrategy(role, strategy string) error {
	rec, err := sim.srv.simRecord(sim.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if err := rec.addStrategyLocked(role, strategy); err != nil {
		return err
	}
	rec.updatedAt = now()
	return nil
}

// RemoveStrategy removes a strategy from a declared role. Removing an
// absent strategy is silently ignored; the role itself must exist.
func (sim *Simulator) RemoveStrategy(role, strategy string) error {
	rec, err := sim.srv.simRecord(sim.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.removeStrategyLocked(sim.id, role, strategy)
}

// AddStrategies declares every role in the mapping and adds its strategies,
// as one atomic edit.
func (sim *Simulator) AddStrategies(roleStrategies map[string][]string) error {
	rec, err := sim.srv.simRecord(sim.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	roles := sortedKeys(roleStrategies)
	for _, role := range roles {
		rec.addRoleLocked(role)
		for _, strat := range roleStrategies[role] {
			if err := rec.addStrategyLocked(role, strat); err != nil {
				return err
			}
		}
	}
	rec.updatedAt = now()
	return nil
}

// RemoveStrategies removes every listed strategy, as one atomic edit. Each
// named role must exist; absent strategies are ignored.
func (sim *Simulator) RemoveStrategies(roleStrategies map[string][]string) error {
	rec, err := sim.srv.simRecord(sim.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, role := range sortedKeys(roleStrategies) {
		for _, strat := range roleStrategies[role] {
			if err := rec.removeStrategyLocked(sim.id, role, strat); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateGenericScheduler creates a scheduler backed by this simulator.
func (sim *Simulator) CreateGenericScheduler(req NewScheduler) (*Scheduler, error) {
	req.SimulatorID = sim.id
	return sim.srv.CreateGenericScheduler(req)
}

// CreateGame creates a game backed by this simulator.
func (sim *Simulator) CreateGame(name string, size int, configuration map[string]string) (*Game, error) {
	return sim.srv.CreateGame(NewGame{
		SimulatorID:   sim.id,
		Name:          name,
		Size:          size,
		Configuration: configuration,
	})
}

func (rec *simRecord) addRoleLocked(role string) {
	if _, ok := rec.roleConfig[role]; !ok {
		rec.roleConfig[role] = []string{}
	}
}

func (rec *simRecord) addStrategyLocked(role, strategy string) error {
	strats, ok := rec.roleConfig[role]
	if !ok {
		return fmt.Errorf("%w: simulator %d does not declare role %q",
			apperrors.ErrInvalidReference, rec.id, role)
	}
	if i, found := slices.BinarySearch(strats, strategy); !found {
		rec.roleConfig[role] = slices.Insert(strats, i, strategy)
	}
	return nil
}

func (rec *simRecord) removeStrategyLocked(simID int, role, strategy string) error {
	strats, ok := rec.roleConfig[role]
	if !ok {
		return fmt.Errorf("%w: simulator %d does not declare role %q",
			apperrors.ErrInvalidReference, simID, role)
	}
	if i, found := slices.BinarySearch(strats, strategy); found {
		rec.roleConfig[role] = slices.Delete(strats, i, i+1)
		rec.updatedAt = now()
	}
	// Absent strategies are deliberately not an error; the real service
	// swallows them while role removal raises.
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
