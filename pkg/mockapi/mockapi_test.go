package mockapi

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 42
	return New(cfg, zap.NewNop())
}

// newBargainingSimulator builds the simulator most tests schedule against:
// two roles with two strategies each.
func newBargainingSimulator(t *testing.T, s *Server) *Simulator {
	t.Helper()
	sim, err := s.CreateSimulator(NewSimulator{Name: "bargaining", Version: "1"})
	require.NoError(t, err)
	require.NoError(t, sim.AddStrategies(map[string][]string{
		"buyer":  {"shade", "truthful"},
		"seller": {"accept", "shade"},
	}))
	return sim
}

// newBuyerScheduler builds a single-role scheduler of the given size over a
// fresh bargaining simulator.
func newBuyerScheduler(t *testing.T, s *Server, name string, size int, active bool) (*Simulator, *Scheduler) {
	t.Helper()
	sim := newBargainingSimulator(t, s)
	sched, err := sim.CreateGenericScheduler(NewScheduler{
		Name:   name,
		Size:   size,
		Active: active,
	})
	require.NoError(t, err)
	require.NoError(t, sched.AddRole("buyer", size))
	return sim, sched
}
