package domain

// Answer is the outcome of one question turn.
//
// "No passage scored above the relevance floor" is a defined outcome, not
// an error: it yields an ungrounded Answer with a Reason, and the caller
// must surface that instead of fabricating prose from weak matches. This
// replaces sentinel strings and exception control flow with an explicit
// result type.
type Answer struct {
	// Grounded reports whether the answer text is backed by retrieved
	// passages that passed the relevance floor.
	Grounded bool

	// Text is the generated answer. Empty when Grounded is false.
	Text string

	// Sources lists the citations backing the answer, in rank order.
	// Empty when Grounded is false.
	Sources []Source

	// Reason explains an ungrounded outcome (e.g. nothing in the
	// guideline scored above the floor). Empty when Grounded is true.
	Reason string
}

// Ungrounded builds the explicit insufficient-grounding outcome.
func Ungrounded(reason string) Answer {
	return Answer{Grounded: false, Reason: reason}
}
