package mockapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
	"github.com/egtaonline/egta-mock/pkg/config"
	"github.com/egtaonline/egta-mock/pkg/models"
)

func TestCreateGame(t *testing.T) {
	s := newTestServer(t)
	sim := newBargainingSimulator(t, s)

	game, err := sim.CreateGame("market", 2, nil)
	require.NoError(t, err)

	structure, err := game.GetStructure()
	require.NoError(t, err)
	assert.Equal(t, "market", structure.Name)
	assert.Equal(t, 2, structure.Size)
	assert.Nil(t, structure.Subgames)
	assert.Contains(t, structure.URL, "/games/")

	_, err = sim.CreateGame("market", 2, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	byName, err := s.GetGameByName("market")
	require.NoError(t, err)
	assert.Equal(t, game.ID(), byName.ID())

	assert.Len(t, s.Games(), 1)
}

func TestGame_RoleAndStrategyEdits(t *testing.T) {
	s := newTestServer(t)
	sim := newBargainingSimulator(t, s)
	game, err := sim.CreateGame("edits", 3, nil)
	require.NoError(t, err)

	err = game.AddRole("buyer", 4)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "role count exceeds game size")

	require.NoError(t, game.AddRole("buyer", 2))
	err = game.AddRole("buyer", 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	err = game.AddRole("arbiter", 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference)

	// Strategies must be assigned to a game role and declared by the
	// simulator for that role.
	require.NoError(t, game.AddStrategy("buyer", "shade"))
	err = game.AddStrategy("buyer", "lowball")
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
	err = game.AddStrategy("seller", "accept")
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference, "role not assigned to the game")

	require.NoError(t, game.AddStrategies(map[string][]string{"buyer": {"truthful", "shade"}}))

	summary, err := game.GetSummary()
	require.NoError(t, err)
	require.Len(t, summary.Roles, 1)
	assert.Equal(t, []string{"shade", "truthful"}, summary.Roles[0].Strategies)

	// Absent strategy removal is silent; the role must exist.
	require.NoError(t, game.RemoveStrategy("buyer", "never-added"))
	err = game.RemoveStrategy("seller", "accept")
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
	require.NoError(t, game.RemoveStrategies(map[string][]string{"buyer": {"truthful"}}))

	require.NoError(t, game.RemoveRole("buyer"))
	require.NoError(t, game.RemoveRole("buyer"), "absent role removal is silent")
}

func TestGame_ProfileFilter(t *testing.T) {
	s := newTestServer(t)
	sim := newBargainingSimulator(t, s)
	sched, err := sim.CreateGenericScheduler(NewScheduler{Name: "feeder", Size: 2, Active: true})
	require.NoError(t, err)
	require.NoError(t, sched.AddRole("buyer", 2))

	pure, err := sched.AddProfile("buyer: 2 shade", 2)
	require.NoError(t, err)
	mixed, err := sched.AddProfile("buyer: 1 shade, 1 truthful", 2)
	require.NoError(t, err)

	// A game restricted to shade only sees the pure profile: the mixed
	// profile's truthful players fall outside the game's strategy set.
	game, err := sim.CreateGame("restricted", 2, nil)
	require.NoError(t, err)
	require.NoError(t, game.AddRole("buyer", 2))
	require.NoError(t, game.AddStrategy("buyer", "shade"))

	summary, err := game.GetSummary()
	require.NoError(t, err)
	require.Len(t, summary.Profiles, 1)
	assert.Equal(t, pure.ID, summary.Profiles[0].ID)
	assert.Equal(t, 2, summary.Profiles[0].ObservationsCount)

	// Widening the strategy set picks up the mixed profile too, in id
	// order.
	require.NoError(t, game.AddStrategy("buyer", "truthful"))
	summary, err = game.GetSummary()
	require.NoError(t, err)
	require.Len(t, summary.Profiles, 2)
	assert.Equal(t, pure.ID, summary.Profiles[0].ID)
	assert.Equal(t, mixed.ID, summary.Profiles[1].ID)
}

func TestGame_Granularities(t *testing.T) {
	s := newTestServer(t)
	sim := newBargainingSimulator(t, s)
	sched, err := sim.CreateGenericScheduler(NewScheduler{Name: "data", Size: 2, Active: true})
	require.NoError(t, err)
	require.NoError(t, sched.AddRole("buyer", 2))
	_, err = sched.AddProfile("buyer: 2 shade", 3)
	require.NoError(t, err)

	game, err := sim.CreateGame("views", 2, nil)
	require.NoError(t, err)
	require.NoError(t, game.AddRole("buyer", 2))
	require.NoError(t, game.AddStrategy("buyer", "shade"))

	obs, err := game.GetObservations()
	require.NoError(t, err)
	assert.Equal(t, "bargaining-1", obs.SimulatorFullname)
	require.Len(t, obs.Profiles, 1)
	assert.Len(t, obs.Profiles[0].Observations, 3)

	full, err := game.GetFullData()
	require.NoError(t, err)
	require.Len(t, full.Profiles, 1)
	require.Len(t, full.Profiles[0].Observations, 3)
	assert.Len(t, full.Profiles[0].Observations[0].Players, 2)

	tests := []struct {
		granularity models.Granularity
		want        any
	}{
		{granularity: models.GranularityStructure, want: &models.GameStructure{}},
		{granularity: models.GranularitySummary, want: &models.GameSummary{}},
		{granularity: models.GranularityObservations, want: &models.GameObservations{}},
		{granularity: models.GranularityFull, want: &models.GameFull{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.granularity), func(t *testing.T) {
			got, err := game.GetInfo(tt.granularity)
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
	_, err = game.GetInfo(models.Granularity("bogus"))
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestGame_SharesProfilePoolWithScheduler(t *testing.T) {
	s := newTestServer(t)
	sim := newBargainingSimulator(t, s)
	sched, err := sim.CreateGenericScheduler(NewScheduler{Name: "pool", Size: 2, Active: true})
	require.NoError(t, err)
	require.NoError(t, sched.AddRole("buyer", 2))

	// A game created from the scheduler inherits simulator, size, and
	// configuration, so it reads the same instance's profile pool.
	game, err := sched.CreateGame("")
	require.NoError(t, err)
	structure, err := game.GetStructure()
	require.NoError(t, err)
	assert.Equal(t, "pool", structure.Name, "empty name copies the scheduler's")

	schedInfo, err := sched.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, schedInfo.SimulatorInstanceID, structure.SimulatorInstanceID)

	require.NoError(t, game.AddRole("buyer", 2))
	require.NoError(t, game.AddStrategy("buyer", "shade"))

	prof, err := sched.AddProfile("buyer: 2 shade", 1)
	require.NoError(t, err)
	summary, err := game.GetSummary()
	require.NoError(t, err)
	require.Len(t, summary.Profiles, 1)
	assert.Equal(t, prof.ID, summary.Profiles[0].ID)
}

func TestCreateGameFromSpec(t *testing.T) {
	s := newTestServer(t)
	sim := newBargainingSimulator(t, s)

	spec := &config.SimSpec{
		Players: map[string]int{"buyer": 1, "seller": 1},
		Strategies: map[string][]string{
			"buyer":  {"shade", "truthful"},
			"seller": {"accept"},
		},
	}
	game, err := s.CreateGameFromSpec(sim.ID(), "from-spec", spec)
	require.NoError(t, err)

	summary, err := game.GetSummary()
	require.NoError(t, err)
	require.Len(t, summary.Roles, 2)
	assert.Equal(t, "buyer", summary.Roles[0].Name)
	assert.Equal(t, []string{"shade", "truthful"}, summary.Roles[0].Strategies)
	assert.Equal(t, "seller", summary.Roles[1].Name)
	assert.Equal(t, 1, summary.Roles[1].Count)

	structure, err := game.GetStructure()
	require.NoError(t, err)
	assert.Equal(t, 2, structure.Size)

	// Strategies the simulator never declared are rejected.
	bad := &config.SimSpec{
		Players:    map[string]int{"buyer": 2},
		Strategies: map[string][]string{"buyer": {"lowball"}},
	}
	_, err = s.CreateGameFromSpec(sim.ID(), "bad-spec", bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
}

func TestGame_Destroy(t *testing.T) {
	s := newTestServer(t)
	sim := newBargainingSimulator(t, s)
	game, err := sim.CreateGame("doomed", 2, nil)
	require.NoError(t, err)

	oldID := game.ID()
	require.NoError(t, game.DestroyGame())

	_, err = s.GetGame(oldID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.GetGameByName("doomed")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	reborn, err := sim.CreateGame("doomed", 2, nil)
	require.NoError(t, err)
	assert.NotEqual(t, oldID, reborn.ID())
}
