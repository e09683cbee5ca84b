package suggest

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/maxvaer/extfuzz/internal/llm"
	"github.com/maxvaer/extfuzz/internal/probe"
)

// Suggester asks a language model for extensions worth fuzzing.
type Suggester struct {
	completer llm.Completer
}

// New returns a Suggester backed by c.
func New(c llm.Completer) *Suggester {
	return &Suggester{completer: c}
}

// Suggest returns at most maxExtensions extensions for url. A failed request
// or an unusable reply yields an empty list rather than an error.
func (s *Suggester) Suggest(ctx context.Context, url string, headers probe.HeaderSet, maxExtensions int) []string {
	prompt := BuildPrompt(url, headers, maxExtensions)
	log.WithFields(log.Fields{"prompt": prompt}).Debug("Sending prompt")

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Warn("Error with AI response")
		return nil
	}
	log.WithFields(log.Fields{"reply": raw}).Debug("Received reply")

	reply := ParseReply(raw)
	if !reply.Parsed {
		log.WithFields(log.Fields{"reply": raw}).Warn("AI response is not a JSON object with an extensions list")
		return nil
	}
	return Truncate(Sanitize(reply.Extensions), maxExtensions)
}
