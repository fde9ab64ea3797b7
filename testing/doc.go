// Package testing provides a deterministic, in-memory network engine for
// testing sessions without sockets.
//
// # Overview
//
// SimulatedEngine implements interfaces.Engine. Instead of talking to the
// network it queues events injected by the test and records every call the
// session makes, so tests can drive a session through exact sequences of
// engine activity and verify what it asked of the network.
//
// # Usage
//
//	factory := testing.NewFactory()
//	opts := toxsession.NewOptions()
//	opts.Engine = factory.New
//	s, err := toxsession.New(opts)
//
//	engine := factory.Last()
//	engine.Inject(
//	    testing.FriendConnection(friendKey, interfaces.RawConnectionUDP),
//	    testing.FriendMessage(friendKey, "hello"),
//	)
//	s.Iterate() // delivers both events
//
//	for _, call := range engine.CallsTo("SendMessage") {
//	    // inspect outgoing messages
//	}
//
// # Failures
//
// SetFailure makes a named method return an error, which exercises the
// session's handling of queue-full and allocation failures. Factory.FailWith
// makes engine creation fail.
//
// # Engine State
//
// Savedata returns the DHT id and tracked friend keys in a small opaque
// format, and an engine created with that state restores both. This lets
// persistence tests check that engine state survives a save and load.
//
// # Thread Safety
//
// All methods on SimulatedEngine and Factory are safe for concurrent use.
package testing
