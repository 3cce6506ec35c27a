package mockapi

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
	"github.com/egtaonline/egta-mock/pkg/assign"
	"github.com/egtaonline/egta-mock/pkg/metrics"
	"github.com/egtaonline/egta-mock/pkg/models"
)

// schedRecord is the mutable backing store for one generic scheduler.
type schedRecord struct {
	mu                            sync.Mutex
	id                            int
	name                          string
	active                        bool
	processMemory                 int
	size                          int
	timePerObservation            int
	observationsPerSimulation     int
	nodes                         int
	defaultObservationRequirement int
	configuration                 map[string]string
	roleConfig                    map[string]int
	// requirements maps profile id to its requested observation count.
	requirements        map[int]int
	simulatorID         int
	simulatorInstanceID int
	createdAt           time.Time
	updatedAt           time.Time
}

// NewScheduler describes a generic scheduler to create. Nodes defaults
// to 1. Configuration overrides the simulator's base configuration key by
// key to form the effective configuration.
type NewScheduler struct {
	SimulatorID               int
	Name                      string
	Active                    bool
	ProcessMemory             int
	Size                      int
	TimePerObservation        int
	ObservationsPerSimulation int
	Nodes                     int
	Configuration             map[string]string
}

// SchedulerUpdate carries optional field updates; nil fields are left
// unchanged.
type SchedulerUpdate struct {
	Active                        *bool
	ProcessMemory                 *int
	Size                          *int
	TimePerObservation            *int
	ObservationsPerSimulation     *int
	Nodes                         *int
	DefaultObservationRequirement *int
}

// Scheduler is a handle on one scheduler record.
type Scheduler struct {
	srv *Server
	id  int
}

// CreateGenericScheduler registers a scheduler. Its name must be unique
// among live schedulers, and its simulator must exist.
func (s *Server) CreateGenericScheduler(req NewScheduler) (*Scheduler, error) {
	sim, err := s.simRecord(req.SimulatorID)
	if err != nil {
		return nil, err
	}
	conf := s.effectiveConfiguration(sim, req.Configuration)
	nodes := req.Nodes
	if nodes == 0 {
		nodes = 1
	}

	s.schedsMu.Lock()
	defer s.schedsMu.Unlock()
	if _, exists := s.schedsByName[req.Name]; exists {
		return nil, fmt.Errorf("%w: scheduler %s already exists",
			apperrors.ErrConflict, req.Name)
	}
	instID, _ := s.resolveInstance(req.SimulatorID, conf)
	ts := now()
	id, rec := s.scheds.Allocate(func(id int) *schedRecord {
		return &schedRecord{
			id:                        id,
			name:                      req.Name,
			active:                    req.Active,
			processMemory:             req.ProcessMemory,
			size:                      req.Size,
			timePerObservation:        req.TimePerObservation,
			observationsPerSimulation: req.ObservationsPerSimulation,
			nodes:                     nodes,
			configuration:             conf,
			roleConfig:                make(map[string]int),
			requirements:              make(map[int]int),
			simulatorID:               req.SimulatorID,
			simulatorInstanceID:       instID,
			createdAt:                 ts,
			updatedAt:                 ts,
		}
	})
	s.schedsByName[req.Name] = rec
	metrics.EntitiesCreated.WithLabelValues("scheduler").Inc()
	s.logger.Debug("created scheduler",
		zap.Int("id", id), zap.String("name", req.Name), zap.Int("instance", instID))
	return &Scheduler{srv: s, id: id}, nil
}

// GetScheduler returns a handle on the scheduler with the given id.
func (s *Server) GetScheduler(id int) (*Scheduler, error) {
	if _, ok := s.scheds.Get(id); !ok {
		return nil, fmt.Errorf("%w: scheduler %d", apperrors.ErrNotFound, id)
	}
	return &Scheduler{srv: s, id: id}, nil
}

// GetSchedulerByName resolves a live scheduler by name.
func (s *Server) GetSchedulerByName(name string) (*Scheduler, error) {
	s.schedsMu.Lock()
	defer s.schedsMu.Unlock()
	rec, ok := s.schedsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: scheduler %s", apperrors.ErrNotFound, name)
	}
	return &Scheduler{srv: s, id: rec.id}, nil
}

// Schedulers returns read-only projections of every live scheduler in id
// order.
func (s *Server) Schedulers() []*models.Scheduler {
	var views []*models.Scheduler
	s.scheds.ForEachLive(func(id int, rec *schedRecord) bool {
		views = append(views, schedulerView(rec))
		return true
	})
	return views
}

func (s *Server) schedRecord(id int) (*schedRecord, error) {
	rec, ok := s.scheds.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: scheduler %d", apperrors.ErrNotFound, id)
	}
	return rec, nil
}

func schedulerView(rec *schedRecord) *models.Scheduler {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return &models.Scheduler{
		Active:                        rec.active,
		CreatedAt:                     models.FormatTime(rec.createdAt),
		DefaultObservationRequirement: rec.defaultObservationRequirement,
		ID:                            rec.id,
		Name:                          rec.name,
		Nodes:                         rec.nodes,
		ObservationsPerSimulation:     rec.observationsPerSimulation,
		ProcessMemory:                 rec.processMemory,
		SimulatorInstanceID:           rec.simulatorInstanceID,
		Size:                          rec.size,
		TimePerObservation:            rec.timePerObservation,
		UpdatedAt:                     models.FormatTime(rec.updatedAt),
	}
}

// snapshotRoleConfig copies the role/count mapping under the record lock.
func (rec *schedRecord) snapshotRoleConfig() map[string]int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make(map[string]int, len(rec.roleConfig))
	for role, count := range rec.roleConfig {
		out[role] = count
	}
	return out
}

// snapshotRequirements copies the profile requirement mapping under the
// record lock.
func (rec *schedRecord) snapshotRequirements() map[int]int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make(map[int]int, len(rec.requirements))
	for pid, count := range rec.requirements {
		out[pid] = count
	}
	return out
}

// ID returns the scheduler's id.
func (sc *Scheduler) ID() int { return sc.id }

// GetInfo returns the scheduler's read-only projection.
func (sc *Scheduler) GetInfo() (*models.Scheduler, error) {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return nil, err
	}
	return schedulerView(rec), nil
}

// GetRequirements returns the scheduler projection that includes its
// configuration and every scheduled profile's current progress against its
// requirement.
func (sc *Scheduler) GetRequirements() (*models.SchedulerRequirements, error) {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	view := &models.SchedulerRequirements{
		Active:                        rec.active,
		Configuration:                 configurationPairs(rec.configuration),
		DefaultObservationRequirement: rec.defaultObservationRequirement,
		ID:                            rec.id,
		Name:                          rec.name,
		Nodes:                         rec.nodes,
		ObservationsPerSimulation:     rec.observationsPerSimulation,
		ProcessMemory:                 rec.processMemory,
		SchedulingRequirements:        make([]models.ProfileRequirement, 0, len(rec.requirements)),
		SimulatorID:                   rec.simulatorID,
		Size:                          rec.size,
		TimePerObservation:            rec.timePerObservation,
		Type:                          "GenericScheduler",
		URL: fmt.Sprintf("https://%s/generic_schedulers/%d",
			sc.srv.cfg.Domain, rec.id),
	}
	reqs := make(map[int]int, len(rec.requirements))
	for pid, count := range rec.requirements {
		reqs[pid] = count
	}
	rec.mu.Unlock()

	for pid, count := range reqs {
		prof, ok := sc.srv.profiles.Get(pid)
		if !ok {
			continue
		}
		view.SchedulingRequirements = append(view.SchedulingRequirements,
			models.ProfileRequirement{
				CurrentCount: prof.observationCount(),
				ID:           pid,
				Requirement:  count,
			})
	}
	sort.Slice(view.SchedulingRequirements, func(i, j int) bool {
		return view.SchedulingRequirements[i].ID < view.SchedulingRequirements[j].ID
	})
	return view, nil
}

// Update applies the non-nil fields. Transitioning inactive to active
// catches every required profile up to its requested observation count
// before the flag flips; deactivation withholds new demand but never
// discards synthesized observations.
func (sc *Scheduler) Update(u SchedulerUpdate) error {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return err
	}

	if u.Active != nil && *u.Active {
		rec.mu.Lock()
		wasActive := rec.active
		rec.mu.Unlock()
		if !wasActive {
			for pid, count := range rec.snapshotRequirements() {
				prof, ok := sc.srv.profiles.Get(pid)
				if !ok {
					continue
				}
				sc.srv.ensureObservations(prof, rec, count)
			}
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if u.Active != nil {
		rec.active = *u.Active
	}
	if u.ProcessMemory != nil {
		rec.processMemory = *u.ProcessMemory
	}
	if u.Size != nil {
		rec.size = *u.Size
	}
	if u.TimePerObservation != nil {
		rec.timePerObservation = *u.TimePerObservation
	}
	if u.ObservationsPerSimulation != nil {
		rec.observationsPerSimulation = *u.ObservationsPerSimulation
	}
	if u.Nodes != nil {
		rec.nodes = *u.Nodes
	}
	if u.DefaultObservationRequirement != nil {
		rec.defaultObservationRequirement = *u.DefaultObservationRequirement
	}
	rec.updatedAt = now()
	return nil
}

// Activate flips the scheduler active, scheduling all current requirements.
func (sc *Scheduler) Activate() error {
	active := true
	return sc.Update(SchedulerUpdate{Active: &active})
}

// Deactivate flips the scheduler inactive.
func (sc *Scheduler) Deactivate() error {
	active := false
	return sc.Update(SchedulerUpdate{Active: &active})
}

// AddRole assigns count players to a role. The role must be new to the
// scheduler, declared by the simulator, and must not push the role total
// past the scheduler's size.
func (sc *Scheduler) AddRole(role string, count int) error {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return err
	}
	sim, err := sc.srv.simRecord(rec.simulatorID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	total := 0
	for _, c := range rec.roleConfig {
		total += c
	}
	if total+count > rec.size {
		return fmt.Errorf("%w: role %q with count %d exceeds scheduler size %d",
			apperrors.ErrConflict, role, count, rec.size)
	}
	if _, exists := rec.roleConfig[role]; exists {
		return fmt.Errorf("%w: scheduler %d already assigns role %q",
			apperrors.ErrConflict, sc.id, role)
	}
	sim.mu.Lock()
	_, declared := sim.roleConfig[role]
	sim.mu.Unlock()
	if !declared {
		return fmt.Errorf("%w: simulator %d does not declare role %q",
			apperrors.ErrInvalidReference, rec.simulatorID, role)
	}
	rec.roleConfig[role] = count
	rec.updatedAt = now()
	return nil
}

// RemoveRole unassigns a role. Removing an absent role is silently ignored.
func (sc *Scheduler) RemoveRole(role string) error {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, ok := rec.roleConfig[role]; ok {
		delete(rec.roleConfig, role)
		rec.updatedAt = now()
	}
	return nil
}

// AddProfile resolves the assignment to a profile (creating it on first
// reference) and registers it with the requested observation count. If the
// profile is already required, the call returns the current state without
// changing the requirement — the real service behaves this way, so the
// quirk is preserved. On an active scheduler the profile is immediately
// caught up.
func (sc *Scheduler) AddProfile(assignment string, count int) (*models.Profile, error) {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return nil, err
	}
	prof, err := sc.srv.getOrCreateProfile(rec, assignment)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	if _, required := rec.requirements[prof.id]; required {
		rec.mu.Unlock()
		return profileView(prof), nil
	}
	rec.requirements[prof.id] = count
	rec.updatedAt = now()
	active := rec.active
	rec.mu.Unlock()

	if active {
		sc.srv.ensureObservations(prof, rec, count)
	}
	return profileView(prof), nil
}

// AddProfileGroups is AddProfile for callers that hold symmetry-group specs
// instead of an assignment string; the specs are canonically formatted
// first.
func (sc *Scheduler) AddProfileGroups(groups []assign.GroupSpec, count int) (*models.Profile, error) {
	return sc.AddProfile(assign.Format(groups), count)
}

// UpdateProfile replaces the requested count of an already-known profile:
// the requirement is removed and re-added wholesale.
func (sc *Scheduler) UpdateProfile(profileID int, count int) (*models.Profile, error) {
	prof, ok := sc.srv.profiles.Get(profileID)
	if !ok {
		return nil, fmt.Errorf("%w: profile %d", apperrors.ErrNotFound, profileID)
	}
	if err := sc.RemoveProfile(profileID); err != nil {
		return nil, err
	}
	return sc.AddProfile(prof.assignment, count)
}

// UpdateProfileAssignment is UpdateProfile addressed by assignment string.
func (sc *Scheduler) UpdateProfileAssignment(assignment string, count int) (*models.Profile, error) {
	// Resolve without bumping any existing requirement.
	view, err := sc.AddProfile(assignment, 0)
	if err != nil {
		return nil, err
	}
	if err := sc.RemoveProfile(view.ID); err != nil {
		return nil, err
	}
	return sc.AddProfile(assignment, count)
}

// RemoveProfile unregisters a profile's requirement. Observations already
// generated are kept; unknown profiles are silently ignored.
func (sc *Scheduler) RemoveProfile(profileID int) error {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, ok := rec.requirements[profileID]; ok {
		delete(rec.requirements, profileID)
		rec.updatedAt = now()
	}
	return nil
}

// RemoveAllProfiles unregisters every requirement.
func (sc *Scheduler) RemoveAllProfiles() error {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.requirements) > 0 {
		rec.updatedAt = now()
	}
	clear(rec.requirements)
	return nil
}

// CreateGame creates a game sharing this scheduler's simulator, size, and
// configuration. An empty name copies the scheduler's name, which fails if
// a game already holds it.
func (sc *Scheduler) CreateGame(name string) (*Game, error) {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	if name == "" {
		name = rec.name
	}
	size := rec.size
	simID := rec.simulatorID
	conf := make(map[string]string, len(rec.configuration))
	for k, v := range rec.configuration {
		conf[k] = v
	}
	rec.mu.Unlock()
	return sc.srv.CreateGame(NewGame{
		SimulatorID:   simID,
		Name:          name,
		Size:          size,
		Configuration: conf,
	})
}

// DestroyScheduler soft-deletes the scheduler: the name is freed for reuse
// while the id slot stays dead forever. Profiles and observations it
// scheduled persist for other referents.
func (sc *Scheduler) DestroyScheduler() error {
	rec, err := sc.srv.schedRecord(sc.id)
	if err != nil {
		return err
	}
	sc.srv.schedsMu.Lock()
	defer sc.srv.schedsMu.Unlock()
	delete(sc.srv.schedsByName, rec.name)
	sc.srv.scheds.Tombstone(sc.id)
	metrics.EntitiesDestroyed.WithLabelValues("scheduler").Inc()
	return nil
}
