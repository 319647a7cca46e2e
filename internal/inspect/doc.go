// Package inspect coordinates the live views onto a selected pod: an
// interactive exec session, a describe/logs output stream, and an LLM
// analysis run over the collected output.
//
// All three controllers share one survival pattern for rapid target
// switching: subscribe to result events before triggering the backend,
// tag every subscription with the generation current at subscribe
// time, drop events whose generation is stale, and tear every
// subscription down on every exit path. The generation counter is what
// keeps output from an abandoned operation out of its successor's
// display.
package inspect
