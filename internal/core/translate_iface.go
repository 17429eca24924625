package core

import "context"

// Translator converts a final transcript between primary language subtags
// ("he" -> "es"). Failures are recoverable; callers fall back to the
// original text.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}
