package driving

import (
	"context"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

// AskService answers a natural-language question from the guideline.
type AskService interface {
	// Ask retrieves grounding passages, assembles a cited context, and
	// generates an answer. When nothing passes the relevance floor it
	// returns an ungrounded Answer rather than fabricating one; that is
	// an outcome, not an error. Errors are scoped to this one turn.
	Ask(ctx context.Context, question string) (domain.Answer, error)
}
