package mockapi

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
	"github.com/egtaonline/egta-mock/pkg/config"
	"github.com/egtaonline/egta-mock/pkg/metrics"
	"github.com/egtaonline/egta-mock/pkg/models"
)

// gameRole is one role of a game: its player count and allowed strategies,
// kept sorted with duplicate inserts suppressed.
type gameRole struct {
	count      int
	strategies []string
}

// gameRecord is the mutable backing store for one game.
type gameRecord struct {
	mu                  sync.Mutex
	id                  int
	name                string
	size                int
	configuration       map[string]string
	roleConfig          map[string]*gameRole
	simulatorID         int
	simulatorInstanceID int
	createdAt           time.Time
	updatedAt           time.Time
}

// NewGame describes a game to create. Configuration overrides the
// simulator's base configuration to form the effective configuration, which
// determines the simulator instance the game reads profiles from.
type NewGame struct {
	SimulatorID   int
	Name          string
	Size          int
	Configuration map[string]string
}

// Game is a handle on one game record.
type Game struct {
	srv *Server
	id  int
}

// CreateGame registers a game. Its name must be unique among live games,
// and its simulator must exist.
func (s *Server) CreateGame(req NewGame) (*Game, error) {
	sim, err := s.simRecord(req.SimulatorID)
	if err != nil {
		return nil, err
	}
	conf := s.effectiveConfiguration(sim, req.Configuration)

	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	if _, exists := s.gamesByName[req.Name]; exists {
		return nil, fmt.Errorf("%w: game %s already exists",
			apperrors.ErrConflict, req.Name)
	}
	instID, _ := s.resolveInstance(req.SimulatorID, conf)
	ts := now()
	id, rec := s.games.Allocate(func(id int) *gameRecord {
		return &gameRecord{
			id:                  id,
			name:                req.Name,
			size:                req.Size,
			configuration:       conf,
			roleConfig:          make(map[string]*gameRole),
			simulatorID:         req.SimulatorID,
			simulatorInstanceID: instID,
			createdAt:           ts,
			updatedAt:           ts,
		}
	})
	s.gamesByName[req.Name] = rec
	metrics.EntitiesCreated.WithLabelValues("game").Inc()
	s.logger.Debug("created game",
		zap.Int("id", id), zap.String("name", req.Name), zap.Int("instance", instID))
	return &Game{srv: s, id: id}, nil
}

// CreateGameFromSpec creates a game from a declarative player/strategy
// spec: size is the total player count, and every role and strategy in the
// spec is assigned. The simulator must already declare them.
func (s *Server) CreateGameFromSpec(simID int, name string, spec *config.SimSpec) (*Game, error) {
	game, err := s.CreateGame(NewGame{
		SimulatorID: simID,
		Name:        name,
		Size:        spec.Size(),
	})
	if err != nil {
		return nil, err
	}
	for _, role := range sortedKeys(spec.Players) {
		if err := game.AddRole(role, spec.Players[role]); err != nil {
			return nil, err
		}
	}
	if err := game.AddStrategies(spec.Strategies); err != nil {
		return nil, err
	}
	return game, nil
}

// GetGame returns a handle on the game with the given id.
func (s *Server) GetGame(id int) (*Game, error) {
	if _, ok := s.games.Get(id); !ok {
		return nil, fmt.Errorf("%w: game %d", apperrors.ErrNotFound, id)
	}
	return &Game{srv: s, id: id}, nil
}

// GetGameByName resolves a live game by name.
func (s *Server) GetGameByName(name string) (*Game, error) {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	rec, ok := s.gamesByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", apperrors.ErrNotFound, name)
	}
	return &Game{srv: s, id: rec.id}, nil
}

// Games returns structure projections of every live game in id order.
func (s *Server) Games() []*models.GameStructure {
	var views []*models.GameStructure
	s.games.ForEachLive(func(id int, rec *gameRecord) bool {
		views = append(views, s.gameStructureView(rec))
		return true
	})
	return views
}

func (s *Server) gameRecord(id int) (*gameRecord, error) {
	rec, ok := s.games.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: game %d", apperrors.ErrNotFound, id)
	}
	return rec, nil
}

func (s *Server) gameStructureView(rec *gameRecord) *models.GameStructure {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return &models.GameStructure{
		CreatedAt:           models.FormatTime(rec.createdAt),
		ID:                  rec.id,
		Name:                rec.name,
		SimulatorInstanceID: rec.simulatorInstanceID,
		Size:                rec.size,
		Subgames:            nil,
		UpdatedAt:           models.FormatTime(rec.updatedAt),
		URL:                 fmt.Sprintf("https://%s/games/%d", s.cfg.Domain, rec.id),
	}
}

// ID returns the game's id.
func (g *Game) ID() int { return g.id }

// GetStructure returns the game's shape with no payoff data.
func (g *Game) GetStructure() (*models.GameStructure, error) {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return nil, err
	}
	return g.srv.gameStructureView(rec), nil
}

// gameScan is the common filter-join over the instance's profile pool: it
// snapshots the game's header fields and retains the profiles whose
// symmetry groups, restricted to the game's role/strategy set, exactly
// exhaust the game's per-role counts.
func (g *Game) gameScan() (*models.GameData, []*profileRecord, error) {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return nil, nil, err
	}
	sim, err := g.srv.simRecord(rec.simulatorID)
	if err != nil {
		return nil, nil, err
	}

	rec.mu.Lock()
	roles := make([]models.GameRole, 0, len(rec.roleConfig))
	strats := make(map[string]map[string]bool, len(rec.roleConfig))
	counts := make(map[string]int, len(rec.roleConfig))
	for _, role := range sortedKeys(rec.roleConfig) {
		gr := rec.roleConfig[role]
		roles = append(roles, models.GameRole{
			Name:       role,
			Count:      gr.count,
			Strategies: slices.Clone(gr.strategies),
		})
		set := make(map[string]bool, len(gr.strategies))
		for _, strat := range gr.strategies {
			set[strat] = true
		}
		strats[role] = set
		counts[role] = gr.count
	}
	header := &models.GameData{
		Configuration:     configurationPairs(rec.configuration),
		ID:                rec.id,
		Name:              rec.name,
		SimulatorFullname: sim.fullName(),
		Roles:             roles,
		URL:               fmt.Sprintf("https://%s/games/%d", g.srv.cfg.Domain, rec.id),
	}
	instID := rec.simulatorInstanceID
	rec.mu.Unlock()

	inst, ok := g.srv.instances.Get(instID)
	if !ok {
		return header, nil, nil
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	var matched []*profileRecord
	for _, prof := range inst.profiles {
		left := make(map[string]int, len(counts))
		for role, c := range counts {
			left[role] = c
		}
		// symmetryGroups is immutable after creation, safe to read here.
		for _, grp := range prof.symmetryGroups {
			if !strats[grp.Role][grp.Strategy] {
				continue
			}
			left[grp.Role] -= grp.Count
		}
		exhausted := true
		for _, c := range left {
			if c != 0 {
				exhausted = false
				break
			}
		}
		if exhausted {
			matched = append(matched, prof)
		}
	}
	slices.SortFunc(matched, func(a, b *profileRecord) int { return a.id - b.id })
	return header, matched, nil
}

// GetSummary returns the game's profiles with aggregated payoffs.
func (g *Game) GetSummary() (*models.GameSummary, error) {
	header, matched, err := g.gameScan()
	if err != nil {
		return nil, err
	}
	view := &models.GameSummary{GameData: *header, Profiles: []models.GameSummaryProfile{}}
	for _, prof := range matched {
		prof.mu.Lock()
		summary := summarizeLocked(prof)
		prof.mu.Unlock()
		view.Profiles = append(view.Profiles, models.GameSummaryProfile{
			ID:                summary.ID,
			ObservationsCount: summary.ObservationsCount,
			SymmetryGroups:    summary.SymmetryGroups,
		})
	}
	return view, nil
}

// GetObservations returns the game's profiles with per-observation grouped
// payoffs.
func (g *Game) GetObservations() (*models.GameObservations, error) {
	header, matched, err := g.gameScan()
	if err != nil {
		return nil, err
	}
	view := &models.GameObservations{GameData: *header, Profiles: []models.GameObservationsProfile{}}
	for _, prof := range matched {
		prof.mu.Lock()
		obs := observationsLocked(prof)
		prof.mu.Unlock()
		view.Profiles = append(view.Profiles, models.GameObservationsProfile{
			ID:             obs.ID,
			Observations:   obs.Observations,
			SymmetryGroups: obs.SymmetryGroups,
		})
	}
	return view, nil
}

// GetFullData returns the game's profiles with per-player payoffs.
func (g *Game) GetFullData() (*models.GameFull, error) {
	header, matched, err := g.gameScan()
	if err != nil {
		return nil, err
	}
	view := &models.GameFull{GameData: *header, Profiles: []models.GameFullProfile{}}
	for _, prof := range matched {
		prof.mu.Lock()
		full := fullDataLocked(prof)
		prof.mu.Unlock()
		view.Profiles = append(view.Profiles, models.GameFullProfile{
			ID:             full.ID,
			Observations:   full.Observations,
			SymmetryGroups: full.SymmetryGroups,
		})
	}
	return view, nil
}

// GetInfo returns the projection for the requested granularity. The
// concrete type depends on the granularity.
func (g *Game) GetInfo(granularity models.Granularity) (any, error) {
	switch granularity {
	case models.GranularityStructure:
		return g.GetStructure()
	case models.GranularitySummary:
		return g.GetSummary()
	case models.GranularityObservations:
		return g.GetObservations()
	case models.GranularityFull:
		return g.GetFullData()
	}
	return nil, fmt.Errorf("%w: %q is not a valid granularity",
		apperrors.ErrMalformedInput, granularity)
}

// AddRole assigns count players to a role. Same preconditions as the
// scheduler's AddRole.
func (g *Game) AddRole(role string, count int) error {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return err
	}
	sim, err := g.srv.simRecord(rec.simulatorID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	total := 0
	for _, gr := range rec.roleConfig {
		total += gr.count
	}
	if total+count > rec.size {
		return fmt.Errorf("%w: role %q with count %d exceeds game size %d",
			apperrors.ErrConflict, role, count, rec.size)
	}
	if _, exists := rec.roleConfig[role]; exists {
		return fmt.Errorf("%w: game %d already assigns role %q",
			apperrors.ErrConflict, g.id, role)
	}
	sim.mu.Lock()
	_, declared := sim.roleConfig[role]
	sim.mu.Unlock()
	if !declared {
		return fmt.Errorf("%w: simulator %d does not declare role %q",
			apperrors.ErrInvalidReference, rec.simulatorID, role)
	}
	rec.roleConfig[role] = &gameRole{count: count, strategies: []string{}}
	rec.updatedAt = now()
	return nil
}

// RemoveRole unassigns a role. Removing an absent role is silently ignored.
func (g *Game) RemoveRole(role string) error {
	rec, err := g.srv.gameRecord(g.id)
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

// AddStrategy allows a strategy for one of the game's roles. The strategy
// must be declared by the simulator for that role.
func (g *Game) AddStrategy(role, strategy string) error {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return err
	}
	sim, err := g.srv.simRecord(rec.simulatorID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.addStrategyLocked(g.id, sim, role, strategy)
}

// AddStrategies allows every listed strategy, as one atomic edit. Each
// named role must already be assigned to the game.
func (g *Game) AddStrategies(roleStrategies map[string][]string) error {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return err
	}
	sim, err := g.srv.simRecord(rec.simulatorID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, role := range sortedKeys(roleStrategies) {
		for _, strat := range roleStrategies[role] {
			if err := rec.addStrategyLocked(g.id, sim, role, strat); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveStrategy disallows a strategy. Removing an absent strategy is
// silently ignored; the role itself must be assigned.
func (g *Game) RemoveStrategy(role, strategy string) error {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.removeStrategyLocked(g.id, role, strategy)
}

// RemoveStrategies disallows every listed strategy, as one atomic edit.
func (g *Game) RemoveStrategies(roleStrategies map[string][]string) error {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, role := range sortedKeys(roleStrategies) {
		for _, strat := range roleStrategies[role] {
			if err := rec.removeStrategyLocked(g.id, role, strat); err != nil {
				return err
			}
		}
	}
	return nil
}

// DestroyGame soft-deletes the game: the name is freed while the id slot
// stays dead. Profiles and observations persist; the game never owned them.
func (g *Game) DestroyGame() error {
	rec, err := g.srv.gameRecord(g.id)
	if err != nil {
		return err
	}
	g.srv.gamesMu.Lock()
	defer g.srv.gamesMu.Unlock()
	delete(g.srv.gamesByName, rec.name)
	g.srv.games.Tombstone(g.id)
	metrics.EntitiesDestroyed.WithLabelValues("game").Inc()
	return nil
}

func (rec *gameRecord) addStrategyLocked(gameID int, sim *simRecord, role, strategy string) error {
	gr, ok := rec.roleConfig[role]
	if !ok {
		return fmt.Errorf("%w: game %d does not assign role %q",
			apperrors.ErrInvalidReference, gameID, role)
	}
	sim.mu.Lock()
	declared := slices.Contains(sim.roleConfig[role], strategy)
	sim.mu.Unlock()
	if !declared {
		return fmt.Errorf("%w: simulator %d role %q does not declare strategy %q",
			apperrors.ErrInvalidReference, rec.simulatorID, role, strategy)
	}
	if i, found := slices.BinarySearch(gr.strategies, strategy); !found {
		gr.strategies = slices.Insert(gr.strategies, i, strategy)
	}
	rec.updatedAt = now()
	return nil
}

func (rec *gameRecord) removeStrategyLocked(gameID int, role, strategy string) error {
	gr, ok := rec.roleConfig[role]
	if !ok {
		return fmt.Errorf("%w: game %d does not assign role %q",
			apperrors.ErrInvalidReference, gameID, role)
	}
	if i, found := slices.BinarySearch(gr.strategies, strategy); found {
		gr.strategies = slices.Delete(gr.strategies, i, i+1)
		rec.updatedAt = now()
	}
	return nil
}
