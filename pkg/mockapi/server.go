// Package mockapi emulates the experiment-management service entirely in
// memory. It reproduces the real service's object lifecycle, identifier
// allocation, deduplication, and statistical aggregation so parity tests can
// run the same logical operations against it that they run against the
// networked API.
package mockapi

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/assign"
	"github.com/egtaonline/egta-mock/pkg/config"
	"github.com/egtaonline/egta-mock/pkg/metrics"
	"github.com/egtaonline/egta-mock/pkg/models"
	"github.com/egtaonline/egta-mock/pkg/registry"
)

// Server is the in-memory stand-in for the experiment service. All methods
// are safe for concurrent use; locking is fine-grained (one mutex per
// collection for allocation and name indexing, one per record for field
// mutations).
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	session uuid.UUID

	sims       *registry.Arena[*simRecord]
	simsMu     sync.Mutex
	simsByName map[string]map[string]*simRecord // name -> version -> record

	scheds       *registry.Arena[*schedRecord]
	schedsMu     sync.Mutex
	schedsByName map[string]*schedRecord

	games       *registry.Arena[*gameRecord]
	gamesMu     sync.Mutex
	gamesByName map[string]*gameRecord

	instances      *registry.Arena[*instanceRecord]
	instancesMu    sync.Mutex
	instancesByKey map[string]int

	groupsMu sync.Mutex
	groupIDs map[groupKey]int

	profiles *registry.Arena[*profileRecord]

	foldersMu sync.Mutex
	folders   []*observationRecord

	rngMu sync.Mutex
	rng   *rand.Rand
}

type groupKey struct {
	role     string
	strategy string
	count    int
}

// New builds a Server. A nil config gets defaults; a nil logger gets
// zap.NewNop.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Server{
		cfg:            cfg,
		logger:         logger,
		session:        uuid.New(),
		sims:           registry.New[*simRecord](),
		simsByName:     make(map[string]map[string]*simRecord),
		scheds:         registry.New[*schedRecord](),
		schedsByName:   make(map[string]*schedRecord),
		games:          registry.New[*gameRecord](),
		gamesByName:    make(map[string]*gameRecord),
		instances:      registry.New[*instanceRecord](),
		instancesByKey: make(map[string]int),
		groupIDs:       make(map[groupKey]int),
		profiles:       registry.New[*profileRecord](),
		rng:            rand.New(rand.NewSource(seed)),
	}
	s.logger = logger.With(zap.String("session", s.session.String()))
	s.logger.Debug("mock service ready", zap.String("domain", cfg.Domain))
	return s
}

// Session returns the identifier stamped on this server's log entries.
func (s *Server) Session() uuid.UUID { return s.session }

// instanceKey canonicalizes a (simulator id, effective configuration) pair:
// equality is structural equality of the sorted key/value pairs.
func instanceKey(simID int, conf map[string]string) string {
	keys := make([]string, 0, len(conf))
	for k := range conf {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "%d", simID)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%q=%q", k, conf[k])
	}
	return b.String()
}

// resolveInstance returns the canonical simulator instance for a simulator
// and effective configuration, creating it on first reference. Concurrent
// first-time resolution for the same key yields a single instance.
func (s *Server) resolveInstance(simID int, conf map[string]string) (int, *instanceRecord) {
	key := instanceKey(simID, conf)
	s.instancesMu.Lock()
	defer s.instancesMu.Unlock()
	if id, ok := s.instancesByKey[key]; ok {
		inst, _ := s.instances.Get(id)
		return id, inst
	}
	id, inst := s.instances.Allocate(func(id int) *instanceRecord {
		return &instanceRecord{id: id, profiles: make(map[string]*profileRecord)}
	})
	s.instancesByKey[key] = id
	metrics.EntitiesCreated.WithLabelValues("simulator_instance").Inc()
	return id, inst
}

// groupID returns the stable identifier for a (role, strategy, count)
// triple, allocating on first use. Two profiles referencing the same triple
// share the id.
func (s *Server) groupID(role, strategy string, count int) int {
	key := groupKey{role: role, strategy: strategy, count: count}
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()
	if id, ok := s.groupIDs[key]; ok {
		return id
	}
	id := len(s.groupIDs)
	s.groupIDs[key] = id
	return id
}

// assignGroups parses an assignment string and tags each clause with its
// global symmetry-group id, preserving clause order.
func (s *Server) assignGroups(assignment string) ([]models.SymmetryGroup, error) {
	specs, err := assign.Parse(assignment)
	if err != nil {
		return nil, err
	}
	groups := make([]models.SymmetryGroup, len(specs))
	for i, spec := range specs {
		groups[i] = models.SymmetryGroup{
			ID:       s.groupID(spec.Role, spec.Strategy, spec.Count),
			Role:     spec.Role,
			Strategy: spec.Strategy,
			Count:    spec.Count,
		}
	}
	return groups, nil
}

// randPayoff draws one synthetic payoff, uniform in [0, 1).
func (s *Server) randPayoff() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

func now() time.Time { return time.Now().UTC() }

// effectiveConfiguration copies a simulator's base configuration and applies
// caller overrides key by key.
func (s *Server) effectiveConfiguration(sim *simRecord, overrides map[string]string) map[string]string {
	sim.mu.Lock()
	conf := make(map[string]string, len(sim.configuration)+len(overrides))
	for k, v := range sim.configuration {
		conf[k] = v
	}
	sim.mu.Unlock()
	for k, v := range overrides {
		conf[k] = v
	}
	return conf
}

// configurationPairs renders a configuration as ordered [key, value] pairs,
// the shape the service uses in game and requirements views.
func configurationPairs(conf map[string]string) [][2]string {
	keys := make([]string, 0, len(conf))
	for k := range conf {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k, conf[k]}
	}
	return pairs
}
