package domain

// StateSnapshot is a point-in-time read of the card ids observable for a
// subject, used only for before/after diff inference and discarded after.
type StateSnapshot struct {
	Subject string
	CardIDs []uint64
}

// Diff returns the ids present in after but absent from the receiver.
// Order follows the after snapshot.
func (s StateSnapshot) Diff(after StateSnapshot) []uint64 {
	seen := make(map[uint64]struct{}, len(s.CardIDs))
	for _, id := range s.CardIDs {
		seen[id] = struct{}{}
	}

	var added []uint64
	for _, id := range after.CardIDs {
		if _, ok := seen[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}
