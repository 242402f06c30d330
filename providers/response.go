package providers

import "time"

// Response is the parsed result of one model invocation. It is read-only
// once returned.
type Response struct {
	// Content is the generated text.
	Content string

	// Usage carries the token counts reported by the remote service.
	Usage Usage

	// Latency is the wall-clock duration of the outbound call, measured by
	// the client around the HTTP round trip.
	Latency time.Duration
}

func (r *Response) String() string {
	return r.Content
}

// Usage reports token counts as returned by the remote service. Providers
// that omit usage information leave the zero value.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// NewUsage derives the total from input and output counts when the service
// does not report one.
func NewUsage(inputTokens, outputTokens int) Usage {
	return Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
	}
}
