// Package downloading implements the fetch stage: it streams a recording
// from the recorder, drops the session handshake frame, pipes the rest
// through the external decoder into a partial file, and promotes the file
// only when the decoder finishes cleanly.
package downloading
