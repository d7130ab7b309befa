/*
Package llm relays reflective-writing text to an OpenAI-compatible
chat-completion API and returns the generated prose verbatim.

The relay makes exactly one attempt per call with a bounded wait
(DefaultTimeout). Failures map onto two sentinel errors so callers can
distinguish them: ErrTimeout when the bounded wait is exceeded, ErrService
for any other upstream failure.
*/
package llm
