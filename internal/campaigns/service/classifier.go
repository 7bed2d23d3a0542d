package service

import "strings"

// defaultPermanentSignatures marks send errors that can never succeed on
// retry: opted-out, malformed or carrier-rejected recipients.
var defaultPermanentSignatures = []string{
	"blacklist",
	"opt-out",
	"opted out",
	"unsubscribed",
	"invalid number",
	"landline",
	"unreachable",
	"do-not-contact",
}

// Classifier categorizes send failures as permanent or transient by matching
// error text against a configurable signature list.
type Classifier struct {
	signatures []string
}

// NewClassifier creates a classifier. An empty signature list falls back to
// the defaults.
func NewClassifier(signatures []string) *Classifier {
	if len(signatures) == 0 {
		signatures = defaultPermanentSignatures
	}

	lowered := make([]string, len(signatures))
	for i, s := range signatures {
		lowered[i] = strings.ToLower(s)
	}

	return &Classifier{signatures: lowered}
}

// Permanent reports whether the error detail matches a permanent-failure
// signature. Unknown errors are treated as transient and stay retryable.
func (c *Classifier) Permanent(detail string) bool {
	lowered := strings.ToLower(detail)
	for _, signature := range c.signatures {
		if strings.Contains(lowered, signature) {
			return true
		}
	}
	return false
}
