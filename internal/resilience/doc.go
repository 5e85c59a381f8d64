// Package resilience groups the fault-tolerance helpers used around outbound calls.
//
// Every remote dependency (news API, classifier APIs, embedding APIs, the
// vector database) is called at most once per request through a circuit
// breaker; nothing is retried. A tripped breaker turns further calls into
// immediate failures until its timeout passes, and callers degrade the same
// way they would for a single failed call.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.HuggingFaceAPIConfig())
//	label, err := circuitbreaker.Run(cb, func() (string, error) {
//	    return callClassifier(ctx, text)
//	})
package resilience
