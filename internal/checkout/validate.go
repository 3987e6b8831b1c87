package checkout

// validateStock fails on the first line whose requested quantity exceeds the
// snapshot's available stock. All-or-nothing: one short line rejects the
// entire checkout.
func validateStock(lines []SnapshotLine) error {
	for _, l := range lines {
		if l.Quantity > l.Stock {
			return &InsufficientStockError{Title: l.Title}
		}
	}
	return nil
}
