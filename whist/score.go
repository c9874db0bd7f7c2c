package whist

// Score 10+bid for an exact bid, otherwise minus the distance.
func Score(bid, taken int) int {
	if bid == taken {
		return 10 + bid
	}
	if taken > bid {
		return bid - taken
	}
	return taken - bid
}
