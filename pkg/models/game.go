package models

// GameStructure is the structure-granularity projection of a game.
type GameStructure struct {
	CreatedAt           string `json:"created_at"`
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	SimulatorInstanceID int    `json:"simulator_instance_id"`
	Size                int    `json:"size"`
	Subgames            any    `json:"subgames"`
	UpdatedAt           string `json:"updated_at"`
	URL                 string `json:"url"`
}

// GameRole is one role of a game's configuration: its player count and
// allowed strategies.
type GameRole struct {
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	Strategies []string `json:"strategies"`
}

// GameData carries the fields shared by every data-granularity game
// projection.
type GameData struct {
	Configuration     [][2]string `json:"configuration"`
	ID                int         `json:"id"`
	Name              string      `json:"name"`
	Roles             []GameRole  `json:"roles"`
	SimulatorFullname string      `json:"simulator_fullname"`
	URL               string      `json:"url"`
}

// GameSummaryProfile is a profile inside a game summary: identity plus
// aggregated payoffs.
type GameSummaryProfile struct {
	ID                int                    `json:"id"`
	ObservationsCount int                    `json:"observations_count"`
	SymmetryGroups    []SymmetryGroupSummary `json:"symmetry_groups"`
}

// GameSummary is the summary-granularity projection of a game.
type GameSummary struct {
	GameData
	Profiles []GameSummaryProfile `json:"profiles"`
}

// GameObservationsProfile is a profile inside an observations-granularity
// game projection.
type GameObservationsProfile struct {
	ID             int                  `json:"id"`
	Observations   []GroupedObservation `json:"observations"`
	SymmetryGroups []SymmetryGroup      `json:"symmetry_groups"`
}

// GameObservations is the observations-granularity projection of a game.
type GameObservations struct {
	GameData
	Profiles []GameObservationsProfile `json:"profiles"`
}

// GameFullProfile is a profile inside a full-granularity game projection.
type GameFullProfile struct {
	ID             int               `json:"id"`
	Observations   []FullObservation `json:"observations"`
	SymmetryGroups []SymmetryGroup   `json:"symmetry_groups"`
}

// GameFull is the full-granularity projection of a game.
type GameFull struct {
	GameData
	Profiles []GameFullProfile `json:"profiles"`
}
