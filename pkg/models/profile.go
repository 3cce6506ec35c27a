package models

// SymmetryGroup is a deduplicated (role, strategy, count) triple: the unit
// over which payoffs are aggregated. Two profiles referencing the same
// triple share the identifier.
type SymmetryGroup struct {
	ID       int    `json:"id"`
	Role     string `json:"role"`
	Strategy string `json:"strategy"`
	Count    int    `json:"count"`
}

// SymmetryGroupSummary extends a symmetry group with its aggregated payoff.
// PayoffSD is nil when fewer than two samples exist; the statistic is
// undefined there.
type SymmetryGroupSummary struct {
	ID       int      `json:"id"`
	Role     string   `json:"role"`
	Strategy string   `json:"strategy"`
	Count    int      `json:"count"`
	Payoff   float64  `json:"payoff"`
	PayoffSD *float64 `json:"payoff_sd"`
}

// Profile is the projection returned when a profile is scheduled: identity,
// shape, and how many observations it has accumulated.
type Profile struct {
	Assignment          string         `json:"assignment"`
	CreatedAt           string         `json:"created_at"`
	ID                  int            `json:"id"`
	ObservationsCount   int            `json:"observations_count"`
	RoleConfiguration   map[string]int `json:"role_configuration"`
	SimulatorInstanceID int            `json:"simulator_instance_id"`
	Size                int            `json:"size"`
	UpdatedAt           string         `json:"updated_at"`
}

// ProfileStructure is the structure-granularity projection. The real
// service renders role counts as strings here, and only here.
type ProfileStructure struct {
	Assignment          string            `json:"assignment"`
	CreatedAt           string            `json:"created_at"`
	ID                  int               `json:"id"`
	ObservationsCount   int               `json:"observations_count"`
	RoleConfiguration   map[string]string `json:"role_configuration"`
	SimulatorInstanceID int               `json:"simulator_instance_id"`
	Size                int               `json:"size"`
	UpdatedAt           string            `json:"updated_at"`
}

// ProfileSummary is the summary-granularity projection: one aggregated
// payoff per symmetry group.
type ProfileSummary struct {
	ID                  int                    `json:"id"`
	ObservationsCount   int                    `json:"observations_count"`
	SimulatorInstanceID int                    `json:"simulator_instance_id"`
	SymmetryGroups      []SymmetryGroupSummary `json:"symmetry_groups"`
}

// GroupPayoff is a per-observation payoff aggregated within one symmetry
// group. PayoffSD is always nil at this granularity.
type GroupPayoff struct {
	ID       int      `json:"id"`
	Payoff   float64  `json:"payoff"`
	PayoffSD *float64 `json:"payoff_sd"`
}

// GroupedObservation is one observation with player identity erased:
// payoffs grouped by symmetry group.
type GroupedObservation struct {
	ExtendedFeatures map[string]any `json:"extended_features"`
	Features         map[string]any `json:"features"`
	SymmetryGroups   []GroupPayoff  `json:"symmetry_groups"`
}

// ProfileObservations is the observations-granularity projection.
type ProfileObservations struct {
	ID                  int                  `json:"id"`
	Observations        []GroupedObservation `json:"observations"`
	SimulatorInstanceID int                  `json:"simulator_instance_id"`
	SymmetryGroups      []SymmetryGroup      `json:"symmetry_groups"`
}

// PlayerPayoff is one player's payoff in one observation, tagged with its
// symmetry group id.
type PlayerPayoff struct {
	E   map[string]any `json:"e"`
	F   map[string]any `json:"f"`
	P   float64        `json:"p"`
	SID int            `json:"sid"`
}

// FullObservation is one observation with per-player payoffs preserved.
type FullObservation struct {
	ExtendedFeatures map[string]any `json:"extended_features"`
	Features         map[string]any `json:"features"`
	Players          []PlayerPayoff `json:"players"`
}

// ProfileFull is the full-granularity projection.
type ProfileFull struct {
	ID                  int               `json:"id"`
	Observations        []FullObservation `json:"observations"`
	SimulatorInstanceID int               `json:"simulator_instance_id"`
	SymmetryGroups      []SymmetryGroup   `json:"symmetry_groups"`
}
