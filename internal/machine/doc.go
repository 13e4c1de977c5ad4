// Package machine talks to the local token endpoint and an OpenAI-compatible
// chat completion API, and appends the machine's reply to the dialogue.
//
// The token endpoint is a plain GET returning the raw token as the body.
// Failures carry the HTTP status and the first 200 bytes of the response so
// they can be logged before the caller falls back to asking the user.
//
// Runner converts the dialogue's "Speaker:" turns into chat messages: turns
// spoken by the configured machine speaker become assistant messages, every
// other turn is a user message that keeps its label.
package machine
