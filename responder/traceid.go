package responder

import "github.com/oklog/ulid/v2"

// newTraceID returns a time ordered id so log lines of one incident sort
// together.
func newTraceID() string {
	return ulid.Make().String()
}
