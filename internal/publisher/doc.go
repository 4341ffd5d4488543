// Package publisher sends the slider value to the outbound topic.
//
// OnChange is the slider's change callback. It publishes the current value
// of session.KeySlider exactly once, maps the outcome to a status code and
// records a human-readable status line under session.KeyPrintStatus. It
// never retries and never triggers a render itself.
package publisher
