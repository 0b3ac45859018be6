package domain

// ResultSet accumulates NOTAMs keyed by ID. The first record seen for an ID
// wins; later duplicates are dropped. It is not safe for concurrent use.
type ResultSet struct {
	seen  map[string]struct{}
	items []Notam
}

// NewResultSet returns an empty set with room for sizeHint records.
func NewResultSet(sizeHint int) *ResultSet {
	return &ResultSet{
		seen:  make(map[string]struct{}, sizeHint),
		items: make([]Notam, 0, sizeHint),
	}
}

// Add inserts each record not already present and returns how many were new.
func (s *ResultSet) Add(notams ...Notam) int {
	added := 0
	for _, n := range notams {
		if _, ok := s.seen[n.ID]; ok {
			continue
		}
		s.seen[n.ID] = struct{}{}
		s.items = append(s.items, n)
		added++
	}
	return added
}

// Len returns the number of distinct records.
func (s *ResultSet) Len() int { return len(s.items) }

// Items returns the records in insertion order.
func (s *ResultSet) Items() []Notam {
	out := make([]Notam, len(s.items))
	copy(out, s.items)
	return out
}

// Dedupe keeps the first record for each ID, preserving order.
func Dedupe(notams []Notam) []Notam {
	s := NewResultSet(len(notams))
	s.Add(notams...)
	return s.items
}
