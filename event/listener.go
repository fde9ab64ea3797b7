package event

import "sync"

// Listener receives every event kind through one method per kind.
//
// Embed BaseListener to implement only the methods of interest.
type Listener interface {
	OnSelfConnectionStatus(e SelfConnectionStatus)
	OnFriendConnectionStatus(e FriendConnectionStatus)
	OnFriendRequest(e FriendRequest)
	OnFriendMessage(e FriendMessage)
	OnFriendName(e FriendName)
	OnFriendStatus(e FriendStatus)
	OnFriendStatusMessage(e FriendStatusMessage)
	OnFriendTyping(e FriendTyping)
	OnFriendReadReceipt(e FriendReadReceipt)
	OnFileControl(e FileControl)
	OnFileReceive(e FileReceive)
	OnFileReceiveChunk(e FileReceiveChunk)
	OnFileChunkRequest(e FileChunkRequest)
	OnFriendLossyPacket(e FriendLossyPacket)
	OnFriendLosslessPacket(e FriendLosslessPacket)
}

// BaseListener ignores every event.
type BaseListener struct{}

func (BaseListener) OnSelfConnectionStatus(SelfConnectionStatus)     {}
func (BaseListener) OnFriendConnectionStatus(FriendConnectionStatus) {}
func (BaseListener) OnFriendRequest(FriendRequest)                   {}
func (BaseListener) OnFriendMessage(FriendMessage)                   {}
func (BaseListener) OnFriendName(FriendName)                         {}
func (BaseListener) OnFriendStatus(FriendStatus)                     {}
func (BaseListener) OnFriendStatusMessage(FriendStatusMessage)       {}
func (BaseListener) OnFriendTyping(FriendTyping)                     {}
func (BaseListener) OnFriendReadReceipt(FriendReadReceipt)           {}
func (BaseListener) OnFileControl(FileControl)                       {}
func (BaseListener) OnFileReceive(FileReceive)                       {}
func (BaseListener) OnFileReceiveChunk(FileReceiveChunk)             {}
func (BaseListener) OnFileChunkRequest(FileChunkRequest)             {}
func (BaseListener) OnFriendLossyPacket(FriendLossyPacket)           {}
func (BaseListener) OnFriendLosslessPacket(FriendLosslessPacket)     {}

// Deliver invokes the listener method matching the kind of e.
func Deliver(l Listener, e Event) {
	e.deliver(l)
}

// Recorder is a Listener that keeps every event it receives. It is safe for
// concurrent use and mostly useful in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns the recorded events in delivery order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in delivery order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind()
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func (r *Recorder) OnSelfConnectionStatus(e SelfConnectionStatus)     { r.record(e) }
func (r *Recorder) OnFriendConnectionStatus(e FriendConnectionStatus) { r.record(e) }
func (r *Recorder) OnFriendRequest(e FriendRequest)                   { r.record(e) }
func (r *Recorder) OnFriendMessage(e FriendMessage)                   { r.record(e) }
func (r *Recorder) OnFriendName(e FriendName)                         { r.record(e) }
func (r *Recorder) OnFriendStatus(e FriendStatus)                     { r.record(e) }
func (r *Recorder) OnFriendStatusMessage(e FriendStatusMessage)       { r.record(e) }
func (r *Recorder) OnFriendTyping(e FriendTyping)                     { r.record(e) }
func (r *Recorder) OnFriendReadReceipt(e FriendReadReceipt)           { r.record(e) }
func (r *Recorder) OnFileControl(e FileControl)                       { r.record(e) }
func (r *Recorder) OnFileReceive(e FileReceive)                       { r.record(e) }
func (r *Recorder) OnFileReceiveChunk(e FileReceiveChunk)             { r.record(e) }
func (r *Recorder) OnFileChunkRequest(e FileChunkRequest)             { r.record(e) }
func (r *Recorder) OnFriendLossyPacket(e FriendLossyPacket)           { r.record(e) }
func (r *Recorder) OnFriendLosslessPacket(e FriendLosslessPacket)     { r.record(e) }
