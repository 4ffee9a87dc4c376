package playback

// SwipeDirection is the navigation intent recognized from a drag gesture
type SwipeDirection int

// Swipe directions
const (
	// SwipeNone means the displacement stayed under the threshold
	SwipeNone SwipeDirection = iota
	// SwipeNext maps a downward drag to forward navigation
	SwipeNext
	// SwipePrev maps an upward drag to backward navigation
	SwipePrev
)

// String returns the string representation of the swipe direction
func (d SwipeDirection) String() string {
	switch d {
	case SwipeNext:
		return "next"
	case SwipePrev:
		return "prev"
	default:
		return "none"
	}
}

// SwipeRecognizer classifies raw drag displacements into navigation intents
type SwipeRecognizer struct {
	threshold float64
}

// NewSwipeRecognizer creates a recognizer with the given displacement threshold
func NewSwipeRecognizer(threshold float64) SwipeRecognizer {
	return SwipeRecognizer{threshold: threshold}
}

// Recognize maps a net vertical displacement to a direction. Positive
// deltas point down the screen.
func (r SwipeRecognizer) Recognize(deltaY float64) SwipeDirection {
	switch {
	case deltaY >= r.threshold:
		return SwipeNext
	case deltaY <= -r.threshold:
		return SwipePrev
	default:
		return SwipeNone
	}
}
