package ctxkey

type contextKey string

const (
	// ContentLength carries the expected byte size of a stream handed to a storage.
	ContentLength contextKey = "content-length"
	// RunState carries the counters of the course tree run a task belongs to.
	RunState contextKey = "run-state"
)
