// Package file coordinates the file transfers of a session: offering files
// to friends, accepting offers, pause/resume/cancel, seeking and the
// chunk-by-chunk flow control driven by engine chunk requests.
//
// # Overview
//
// A Coordinator owns every Transfer keyed by (friend number, file number).
// Outgoing transfers use file numbers 0 through 255, always taking the
// smallest free one. Incoming transfers carry engine-assigned numbers built
// with ReceiveFileNumber, so both directions share one namespace per friend.
//
//	files := file.NewCoordinator(registry, engine)
//	n, err := files.Send(friendNumber, file.KindData, 100, nil, []byte("a.txt"))
//	if errors.Is(err, file.SendErrFriendNotConnected) {
//	    // wait for the friend to come online
//	}
//
// # Transfer States
//
//	Init -> Running <-> Paused -> Finished
//	                           -> Cancelled
//
// An outgoing transfer is Running as soon as the engine accepts the offer.
// An incoming offer stays in Init, accepting no data, until this side calls
// Control with ControlResume. A transfer is Paused while either side has it
// paused; each side can only lift its own pause.
//
// Cancel, a peer cancel, an empty chunk, a zero-length chunk request, the
// friend going offline and deleting the friend all end a transfer and free
// its file number. A *Transfer obtained earlier keeps reporting its final
// state.
//
// # Flow Control
//
// The engine asks for outgoing data with chunk requests. SendChunk only
// accepts data that matches an outstanding request exactly, at the same
// position and with the same length. Seek is allowed only before the first
// chunk has moved.
//
// # Inbound Activity
//
// ReceiveOffer, ReceiveControl, ReceiveChunk and ChunkRequest are called by
// the event dispatcher. They return ErrUnknownTransfer, ErrNotAccepting or
// ErrStalePosition for activity that must not reach the application.
//
// # Thread Safety
//
// Coordinator is not safe for concurrent use; it is driven from the owning
// session's goroutine.
package file
