package models

// Scheduler is the read-only projection of a generic scheduler record.
type Scheduler struct {
	Active                        bool   `json:"active"`
	CreatedAt                     string `json:"created_at"`
	DefaultObservationRequirement int    `json:"default_observation_requirement"`
	ID                            int    `json:"id"`
	Name                          string `json:"name"`
	Nodes                         int    `json:"nodes"`
	ObservationsPerSimulation     int    `json:"observations_per_simulation"`
	ProcessMemory                 int    `json:"process_memory"`
	SimulatorInstanceID           int    `json:"simulator_instance_id"`
	Size                          int    `json:"size"`
	TimePerObservation            int    `json:"time_per_observation"`
	UpdatedAt                     string `json:"updated_at"`
}

// ProfileRequirement pairs a scheduled profile with its requested and
// current observation counts.
type ProfileRequirement struct {
	CurrentCount int `json:"current_count"`
	ID           int `json:"id"`
	Requirement  int `json:"requirement"`
}

// SchedulerRequirements is the scheduler projection that includes its
// stringified configuration and per-profile scheduling requirements.
type SchedulerRequirements struct {
	Active                        bool                 `json:"active"`
	Configuration                 [][2]string          `json:"configuration"`
	DefaultObservationRequirement int                  `json:"default_observation_requirement"`
	ID                            int                  `json:"id"`
	Name                          string               `json:"name"`
	Nodes                         int                  `json:"nodes"`
	ObservationsPerSimulation     int                  `json:"observations_per_simulation"`
	ProcessMemory                 int                  `json:"process_memory"`
	SchedulingRequirements        []ProfileRequirement `json:"scheduling_requirements"`
	SimulatorID                   int                  `json:"simulator_id"`
	Size                          int                  `json:"size"`
	TimePerObservation            int                  `json:"time_per_observation"`
	Type                          string               `json:"type"`
	URL                           string               `json:"url"`
}
