package whist

import "fmt"

type Config struct {
	// Seats is fixed for the lifetime of a game.
	Seats int

	// RNG seed (0 => time-based)
	Seed int64
}

func (c Config) validate() error {
	if c.Seats < MinSeats || c.Seats > MaxSeats {
		return fmt.Errorf("Seats must be in [%d, %d], got %d", MinSeats, MaxSeats, c.Seats)
	}
	return nil
}

// ClampSeats maps a requested seat count into the supported range, with 4 for missing input.
func ClampSeats(n int) int {
	if n <= 0 {
		return 4
	}
	return clamp(n, MinSeats, MaxSeats)
}

// ClampBots keeps at least one seat for the host.
func ClampBots(bots, seats int) int {
	return clamp(bots, 0, seats-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
