// Package interfaces defines the boundary between the session layer and the
// external network engine.
//
// The engine performs peer discovery, key exchange, NAT traversal, onion
// routing and packet transport. The session layer never looks inside it: it
// hands the engine an EngineConfig at creation time, issues commands through
// the [Engine] interface, and polls it once per iteration for the activity it
// observed since the previous poll.
//
// # Raw Events
//
// [Engine.Poll] returns a batch of [RawEvent] records, one per native callback
// the engine fired. Numeric enum fields (connection kind, user status, file
// control, file kind, message type) are carried as raw integers on purpose:
// the dispatcher converts them into domain values and treats any tag or value
// it does not recognise as a version skew between the two layers.
//
//	events, err := engine.Poll()
//	if err != nil {
//	    // the poll failed; try again on the next iteration
//	}
//	for _, ev := range events {
//	    fmt.Println(ev.Tag, ev.FriendKey)
//	}
//
// # Implementations
//
// Production engines live outside this module. The testing package provides
// SimulatedEngine, a deterministic in-memory implementation used to drive the
// session layer with scripted input.
//
// # Error Conventions
//
// Engines report well-known conditions with the sentinels in this package
// (ErrPortAlloc, ErrMalloc, ErrQueueFull, ErrNotBound, ErrNotConnected) so
// the session layer can map them onto the closed error codes of each public
// operation. Any other error is treated as an unknown failure.
package interfaces
