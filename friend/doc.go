// Package friend implements the friend registry of a session: handle
// allocation, the public-key index, and the per-friend state the event
// dispatcher keeps up to date.
//
// # Handles
//
// Friends are addressed by a dense friend number. Numbers are unique among
// the friends that currently exist and are drawn from a free list: a new
// friend always receives the smallest unused number, so a number released by
// Delete is handed out again by the next add. Callers must not hold on to a
// friend number across a delete.
//
//	reg := friend.NewRegistry(self.Public, engine, clock.New())
//	n, err := reg.AddFriend(address, []byte("hi, it's Bob"))
//	switch {
//	case errors.Is(err, friend.AddErrOwnKey):
//	    // tried to befriend ourselves
//	case errors.Is(err, friend.AddErrAlreadySent):
//	    // request to that key is already pending
//	}
//
// # Public-Key Index
//
// ByPublicKey resolves a key to its friend number in constant time through a
// secondary index kept consistent with every add and delete.
//
// # Mutable State
//
// Name, status message, status, connection and typing state are written only
// by the event dispatcher in response to engine events. The setters exist for
// that purpose and are not part of the session's public API.
//
// # Inbound Requests
//
// Inbox remembers friend requests received from the network until they are
// accepted with AddFriendNoRequest or the inbox is cleared.
//
// # Delete Hooks
//
// OnDelete registers callbacks that run before a friend is removed. The file
// transfer coordinator uses it to cancel every transfer the friend owns so no
// transfer ever references a friend that no longer exists.
//
// # Thread Safety
//
// Registry is not safe for concurrent use. It belongs to exactly one session
// and is driven from that session's owning goroutine.
package friend
