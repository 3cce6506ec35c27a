package models

// Source points at the simulator's uploaded source archive.
type Source struct {
	URL string `json:"url"`
}

// Simulator is the read-only projection of a simulator record, used for
// both single-entity reads and enumeration. The real service's listing
// differs slightly from its single-get: it omits url and spells the source
// field "soruce". This projection normalizes both, so a parity harness
// comparing raw field names on the listing call needs a shim for those two
// keys.
type Simulator struct {
	Configuration     map[string]string   `json:"configuration"`
	CreatedAt         string              `json:"created_at"`
	Email             string              `json:"email"`
	ID                int                 `json:"id"`
	Name              string              `json:"name"`
	RoleConfiguration map[string][]string `json:"role_configuration"`
	Source            Source              `json:"source"`
	UpdatedAt         string              `json:"updated_at"`
	URL               string              `json:"url"`
	Version           string              `json:"version"`
}

// FullName is the simulator's name-version composite used in simulation
// listings.
func (s *Simulator) FullName() string {
	return s.Name + "-" + s.Version
}
