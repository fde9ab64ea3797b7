// Package toxsession implements the session core of a Tox-style peer-to-peer
// messenger.
//
// A Session owns one long-term identity and drives an external network
// engine that does the DHT, onion routing and packet crypto. The session
// keeps the friend registry, the file transfer state machines and the
// persisted profile, and turns the engine's raw activity into typed events
// delivered in a fixed order.
//
// # Getting Started
//
// Create a session with options and an engine factory, register a listener
// and drive it from one goroutine:
//
//	opts := toxsession.NewOptions()
//	opts.Engine = myengine.New
//
//	s, err := toxsession.New(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.Callback(&myListener{session: s})
//
//	err = s.Bootstrap("node.example.org", 33445, nodeKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    if err := s.Iterate(); err != nil {
//	        log.Println(err)
//	    }
//	    time.Sleep(s.IterationInterval())
//	}
//
// Run wraps the same loop with a context and the session clock.
//
// # Core Types
//
//   - [Session]: one identity bound to one engine
//   - [Options]: configuration read once by New
//   - [Instances]: integer handles for callers that cannot hold pointers
//
// # Events
//
// Iterate is the only method that produces events. Within one iteration the
// listener sees self connection changes first, then friend connection
// changes, then other friend activity, then file activity, then custom
// packets. Session state is already updated when a listener runs, so a
// listener may call back into the session. Listeners that hand work to
// other goroutines should wrap themselves with event.NewOrderedAdapter.
//
// # Persistence
//
// Save returns a blob holding keys, profile, friends and the engine's
// opaque state. Feed it back through Options.SavedataType and
// Options.SavedataData; SaveEncrypted and Options.SavedataPassphrase
// protect it with a passphrase. Application data such as chat history
// belongs in the profile package, never in the session blob.
//
// # Errors
//
// Each operation returns a closed error code type such as [NewError] or
// friend.AddError. Match codes with errors.Is:
//
//	_, err := s.AddFriend(address, []byte("hi"))
//	if errors.Is(err, friend.AddErrAlreadySent) {
//	    // already a friend
//	}
//
// Broken invariants are not errors. Calling any method after Close panics
// with ErrUseAfterClose, and an engine event this package does not know
// panics with *event.SkewError.
//
// # Thread Safety
//
// A Session is not safe for concurrent use. All methods, including event
// callbacks re-entering the session, run on the goroutine that calls
// Iterate.
package toxsession
