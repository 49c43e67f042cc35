package integrity

// Per-file check outcomes.
// Rules:
// - LOSS fails the verdict, losing records is never acceptable
// - READ_ERROR fails the verdict, it may hide something worse than loss
// - GROWTH and UNCHANGED pass

const (
	StatusLoss      = "LOSS"
	StatusGrowth    = "GROWTH"
	StatusUnchanged = "UNCHANGED"
	StatusReadError = "READ_ERROR"
)

func statusFor(initial, current int) string {
	switch {
	case current < initial:
		return StatusLoss
	case current > initial:
		return StatusGrowth
	default:
		return StatusUnchanged
	}
}
