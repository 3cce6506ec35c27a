package mockapi

import (
	"fmt"
	"math"
	"sort"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
	"github.com/egtaonline/egta-mock/pkg/models"
)

// GetSimulations lists every observation ever synthesized, across all
// profiles. column selects a sort key (folder, profile, or simulator); any
// other value yields the natural chronological order, reversed unless asc.
// pageStart is 1-based; each page starts pageSize entries further in and
// runs to the end, matching the real service's cursorless paging.
func (s *Server) GetSimulations(pageStart int, asc bool, column string) []models.Simulation {
	s.foldersMu.Lock()
	folders := make([]*observationRecord, len(s.folders))
	copy(folders, s.folders)
	s.foldersMu.Unlock()

	switch column {
	case "folder", "profile", "simulator":
		sort.SliceStable(folders, func(i, j int) bool {
			less := folderLess(folders[i], folders[j], column)
			if asc {
				return less
			}
			return folderLess(folders[j], folders[i], column)
		})
	default:
		if !asc {
			for i, j := 0, len(folders)-1; i < j; i, j = i+1, j-1 {
				folders[i], folders[j] = folders[j], folders[i]
			}
		}
	}

	offset := s.cfg.PageSize * (pageStart - 1)
	if offset < 0 || offset >= len(folders) {
		return []models.Simulation{}
	}
	page := folders[offset:]
	sims := make([]models.Simulation, len(page))
	for i, f := range page {
		sims[i] = models.Simulation{
			Folder: f.folder,
			// The mock never queues cluster jobs.
			Job:       math.NaN(),
			Profile:   f.profile,
			Simulator: f.simulator,
			State:     "complete",
		}
	}
	return sims
}

func folderLess(a, b *observationRecord, column string) bool {
	switch column {
	case "profile":
		return a.profile < b.profile
	case "simulator":
		return a.simulator < b.simulator
	default:
		return a.folder < b.folder
	}
}

// GetSimulation returns the detail view for one folder number.
func (s *Server) GetSimulation(folder int) (*models.SimulationDetail, error) {
	s.foldersMu.Lock()
	defer s.foldersMu.Unlock()
	if folder < 0 || folder >= len(s.folders) {
		return nil, fmt.Errorf("%w: simulation folder %d", apperrors.ErrNotFound, folder)
	}
	f := s.folders[folder]
	return &models.SimulationDetail{
		ErrorMessage:      "",
		FolderNumber:      f.folder,
		Job:               "Not specified",
		Profile:           f.profile,
		SimulatorFullname: f.simulator,
		Size:              f.size,
		State:             "complete",
	}, nil
}
