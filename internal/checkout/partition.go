package checkout

// SellerGroup is the subset of a checkout's lines owned by one seller. One
// group becomes one order.
type SellerGroup struct {
	SellerID string
	Lines    []SnapshotLine
}

// partitionBySeller groups lines by owning seller, preserving the order
// sellers are first encountered in the snapshot. Pure.
func partitionBySeller(lines []SnapshotLine) []SellerGroup {
	idx := make(map[string]int, len(lines))
	var groups []SellerGroup
	for _, l := range lines {
		i, ok := idx[l.SellerID]
		if !ok {
			i = len(groups)
			idx[l.SellerID] = i
			groups = append(groups, SellerGroup{SellerID: l.SellerID})
		}
		groups[i].Lines = append(groups[i].Lines, l)
	}
	return groups
}
