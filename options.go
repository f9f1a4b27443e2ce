package generational

// OverflowPolicy decides what happens when a slot's generation would pass
// the maximum value of its Generation type.
type OverflowPolicy uint8

const (
	// Wrapping rolls the generation back to 0. A slot that cycles through
	// every generation value can make an ancient stale id valid again; with
	// 32-bit generations that takes four billion removals of one slot.
	Wrapping OverflowPolicy = iota
	// Saturating retires a slot whose generation has reached the maximum.
	// The slot is never reused, so stale ids can never be revalidated.
	Saturating
)

// String returns the policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case Wrapping:
		return "wrapping"
	case Saturating:
		return "saturating"
	default:
		return "unknown"
	}
}

type options struct {
	capacity int
	overflow OverflowPolicy
}

// Option configures a GenVec at construction time.
type Option func(*options)

// WithCapacity preallocates room for n slots.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithOverflow selects the generation overflow policy. The default is
// Wrapping.
func WithOverflow(p OverflowPolicy) Option {
	return func(o *options) {
		o.overflow = p
	}
}
