// Package event turns raw engine activity into typed, ordered events.
//
// The engine reports activity as interfaces.RawEvent values. A Dispatcher
// validates each batch, updates the friend registry and the file
// coordinator, and then hands every event to a Listener.
//
// # Ordering
//
// Events in one batch are delivered by class, in this order:
//
//	self connection
//	friend connection
//	friend requests, messages, names, statuses, typing and receipts
//	file controls, offers, chunks and chunk requests
//	custom packets
//
// Events of the same class keep the order the engine reported them in, so
// the same batch always produces the same delivery sequence. The state
// change caused by an event is visible to the listener when it runs.
//
// # Version Skew
//
// An unknown tag or enum value means the engine speaks a protocol this
// package does not understand. Dispatch panics with *SkewError before
// delivering anything from the batch.
//
// # Delivering Elsewhere
//
// Listeners run on the goroutine that calls Dispatch. NewOrderedAdapter
// re-posts every event to an Executor such as RunQueue, preserving order
// and copying payloads so the engine may reuse its buffers:
//
//	q := event.NewRunQueue()
//	defer q.Close()
//	d.SetListener(event.NewOrderedAdapter(ui, q))
package event
