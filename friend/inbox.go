package friend

import (
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
)

// maxInboxRequests bounds how many unanswered requests are remembered.
const maxInboxRequests = 64

// Request is a friend request received from the network.
type Request struct {
	PublicKey [32]byte
	Message   []byte
	Received  time.Time
}

// Inbox keeps inbound friend requests until they are answered. A repeated
// request from the same key replaces the earlier one; when the inbox is full
// the least recently received request is evicted.
type Inbox struct {
	clock    clock.Clock
	requests *lru.Cache[[32]byte, Request]
}

// NewInbox creates an empty inbox.
func NewInbox(clk clock.Clock) *Inbox {
	if clk == nil {
		clk = clock.New()
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[[32]byte, Request](maxInboxRequests)
	return &Inbox{clock: clk, requests: cache}
}

// Add records a request.
func (in *Inbox) Add(pk [32]byte, message []byte) Request {
	req := Request{
		PublicKey: pk,
		Message:   append([]byte(nil), message...),
		Received:  in.clock.Now(),
	}
	in.requests.Add(pk, req)
	return req
}

// Take removes and returns the request from pk.
func (in *Inbox) Take(pk [32]byte) (Request, bool) {
	req, ok := in.requests.Peek(pk)
	if ok {
		in.requests.Remove(pk)
	}
	return req, ok
}

// Pending returns the unanswered requests, oldest first.
func (in *Inbox) Pending() []Request {
	return in.requests.Values()
}

// Len returns the number of unanswered requests.
func (in *Inbox) Len() int {
	return in.requests.Len()
}

// Clear drops every pending request.
func (in *Inbox) Clear() {
	in.requests.Purge()
}
