package pool

// CategoryStats is a snapshot of one category's occupancy.
type CategoryStats struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Free     int    `json:"free"`
	InUse    int    `json:"in_use"`
}

// Stats is a snapshot of a manager's occupancy.
type Stats struct {
	Categories      []CategoryStats `json:"categories"`
	PendingReleases int             `json:"pending_releases"`
}

// Stats returns the occupancy of every category in registry order.
func (m *Manager) Stats() Stats {
	s := Stats{PendingReleases: len(m.pending)}
	if m.registry == nil {
		return s
	}
	s.Categories = make([]CategoryStats, 0, m.registry.Len())
	for _, c := range m.registry.categories {
		s.Categories = append(s.Categories, CategoryStats{
			Name:     c.name,
			Capacity: c.capacity,
			Free:     c.Free(),
			InUse:    c.InUse(),
		})
	}

	return s
}
