package models

// Simulation is one row of the global simulation listing. Job is NaN in the
// emulation: the mock never assigns cluster job numbers, matching how the
// real service reports unqueued work.
type Simulation struct {
	Folder    int     `json:"folder"`
	Job       float64 `json:"job"`
	Profile   string  `json:"profile"`
	Simulator string  `json:"simulator"`
	State     string  `json:"state"`
}

// SimulationDetail is the single-simulation projection looked up by folder
// number.
type SimulationDetail struct {
	ErrorMessage      string `json:"error_message"`
	FolderNumber      int    `json:"folder_number"`
	Job               string `json:"job"`
	Profile           string `json:"profile"`
	SimulatorFullname string `json:"simulator_fullname"`
	Size              int    `json:"size"`
	State             string `json:"state"`
}
