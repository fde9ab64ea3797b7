package file

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/opd-ai/toxsession/interfaces"
)

func newTestCoordinator() (*Coordinator, *mockFriends, *mockEngine) {
	friends := newMockFriends()
	friends.add(testOnlineFriend, true)
	friends.add(testOfflineFriend, false)
	engine := &mockEngine{}
	return NewCoordinator(friends, engine), friends, engine
}

// sendRunning starts an outgoing transfer and fails the test on error.
func sendRunning(t *testing.T, c *Coordinator, size uint64) uint32 {
	t.Helper()
	n, err := c.Send(testOnlineFriend, KindData, size, nil, []byte(testFilename))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	return n
}

// receiveOffer records an incoming offer and fails the test on error.
func receiveOffer(t *testing.T, c *Coordinator, slot uint32, size uint64) uint32 {
	t.Helper()
	n := ReceiveFileNumber(slot)
	if _, err := c.ReceiveOffer(testOnlineFriend, n, KindData, size, [32]byte{9}, []byte(testFilename)); err != nil {
		t.Fatalf("ReceiveOffer failed: %v", err)
	}
	return n
}

func TestSendValidation(t *testing.T) {
	c, _, _ := newTestCoordinator()

	tests := []struct {
		name     string
		friend   uint32
		filename []byte
		want     SendError
	}{
		{"nil filename", testOnlineFriend, nil, SendErrNull},
		{"missing friend", testMissingFriend, []byte(testFilename), SendErrFriendNotFound},
		{"offline friend", testOfflineFriend, []byte(testFilename), SendErrFriendNotConnected},
		{"empty filename", testOnlineFriend, []byte{}, SendErrNameEmpty},
		{"long filename", testOnlineFriend, bytes.Repeat([]byte{'x'}, 256), SendErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Send(tt.friend, KindData, testFileSize, nil, tt.filename)
			if !errors.Is(err, tt.want) {
				t.Errorf("Send() error = %v, want %v", err, tt.want)
			}
		})
	}

	if c.Active() != 0 {
		t.Errorf("Active() = %d after failed sends, want 0", c.Active())
	}
}

func TestSendAllocatesSmallestFreeNumber(t *testing.T) {
	c, _, engine := newTestCoordinator()

	for want := uint32(0); want < 3; want++ {
		if got := sendRunning(t, c, testFileSize); got != want {
			t.Fatalf("file number = %d, want %d", got, want)
		}
	}
	if err := c.Control(testOnlineFriend, 1, ControlCancel); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if got := sendRunning(t, c, testFileSize); got != 1 {
		t.Errorf("file number after cancel = %d, want 1", got)
	}
	if len(engine.offers) != 4 {
		t.Errorf("engine saw %d offers, want 4", len(engine.offers))
	}
}

func TestSendTooMany(t *testing.T) {
	c, _, _ := newTestCoordinator()

	for i := 0; i < 256; i++ {
		sendRunning(t, c, testFileSize)
	}
	if _, err := c.Send(testOnlineFriend, KindData, testFileSize, nil, []byte(testFilename)); !errors.Is(err, SendErrTooMany) {
		t.Errorf("257th Send() error = %v, want %v", err, SendErrTooMany)
	}

	c2, _, engine2 := newTestCoordinator()
	engine2.failOffer = true
	if _, err := c2.Send(testOnlineFriend, KindData, testFileSize, nil, []byte(testFilename)); !errors.Is(err, SendErrTooMany) {
		t.Errorf("Send() with engine failure error = %v, want %v", err, SendErrTooMany)
	}
	if c2.Active() != 0 {
		t.Error("refused offer left a transfer behind")
	}
}

func TestSendCreatesRunningTransfer(t *testing.T) {
	c, _, _ := newTestCoordinator()
	id := [32]byte{1, 2, 3}

	n, err := c.Send(testOnlineFriend, KindAvatar, testFileSize, &id, []byte(testFilename))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	tr, err := c.Get(testOnlineFriend, n)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if tr.State() != StateRunning {
		t.Errorf("State() = %v, want Running", tr.State())
	}
	if tr.Direction() != DirectionSend || tr.Kind() != KindAvatar {
		t.Errorf("unexpected direction %v kind %v", tr.Direction(), tr.Kind())
	}

	got, err := c.FileID(testOnlineFriend, n)
	if err != nil || got != id {
		t.Errorf("FileID() = %x, %v; want %x", got, err, id)
	}

	random, err := c.Send(testOnlineFriend, KindData, testFileSize, nil, []byte(testFilename))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if rid, _ := c.FileID(testOnlineFriend, random); rid == ([32]byte{}) {
		t.Error("nil file id was not replaced with a random one")
	}
}

func TestFileIDErrors(t *testing.T) {
	c, _, _ := newTestCoordinator()

	if _, err := c.FileID(testMissingFriend, 0); !errors.Is(err, GetErrFriendNotFound) {
		t.Errorf("FileID() error = %v, want %v", err, GetErrFriendNotFound)
	}
	if _, err := c.FileID(testOnlineFriend, 0); !errors.Is(err, GetErrNotFound) {
		t.Errorf("FileID() error = %v, want %v", err, GetErrNotFound)
	}
}

func TestControlTransitions(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, c *Coordinator) uint32
		cmd       Control
		wantErr   error
		wantState State
	}{
		{
			name:      "accept inbound offer",
			setup:     func(t *testing.T, c *Coordinator) uint32 { return receiveOffer(t, c, 0, testFileSize) },
			cmd:       ControlResume,
			wantState: StateRunning,
		},
		{
			name: "resume outgoing not accepted by peer",
			setup: func(t *testing.T, c *Coordinator) uint32 {
				n := sendRunning(t, c, testFileSize)
				tr, _ := c.Get(testOnlineFriend, n)
				tr.state = StateInit
				return n
			},
			cmd:       ControlResume,
			wantErr:   ControlErrDenied,
			wantState: StateInit,
		},
		{
			name:      "resume running transfer",
			setup:     func(t *testing.T, c *Coordinator) uint32 { return sendRunning(t, c, testFileSize) },
			cmd:       ControlResume,
			wantErr:   ControlErrNotPaused,
			wantState: StateRunning,
		},
		{
			name: "resume transfer paused by peer",
			setup: func(t *testing.T, c *Coordinator) uint32 {
				n := sendRunning(t, c, testFileSize)
				if _, err := c.ReceiveControl(testOnlineFriend, n, ControlPause); err != nil {
					t.Fatalf("ReceiveControl failed: %v", err)
				}
				return n
			},
			cmd:       ControlResume,
			wantErr:   ControlErrDenied,
			wantState: StatePaused,
		},
		{
			name:      "pause running transfer",
			setup:     func(t *testing.T, c *Coordinator) uint32 { return sendRunning(t, c, testFileSize) },
			cmd:       ControlPause,
			wantState: StatePaused,
		},
		{
			name: "pause twice",
			setup: func(t *testing.T, c *Coordinator) uint32 {
				n := sendRunning(t, c, testFileSize)
				if err := c.Control(testOnlineFriend, n, ControlPause); err != nil {
					t.Fatalf("Pause failed: %v", err)
				}
				return n
			},
			cmd:       ControlPause,
			wantErr:   ControlErrAlreadyPaused,
			wantState: StatePaused,
		},
		{
			name:      "pause unaccepted offer",
			setup:     func(t *testing.T, c *Coordinator) uint32 { return receiveOffer(t, c, 0, testFileSize) },
			cmd:       ControlPause,
			wantErr:   ControlErrAlreadyPaused,
			wantState: StateInit,
		},
		{
			name: "resume own pause",
			setup: func(t *testing.T, c *Coordinator) uint32 {
				n := sendRunning(t, c, testFileSize)
				if err := c.Control(testOnlineFriend, n, ControlPause); err != nil {
					t.Fatalf("Pause failed: %v", err)
				}
				return n
			},
			cmd:       ControlResume,
			wantState: StateRunning,
		},
		{
			name: "resume own pause while peer also paused",
			setup: func(t *testing.T, c *Coordinator) uint32 {
				n := sendRunning(t, c, testFileSize)
				if err := c.Control(testOnlineFriend, n, ControlPause); err != nil {
					t.Fatalf("Pause failed: %v", err)
				}
				if _, err := c.ReceiveControl(testOnlineFriend, n, ControlPause); err != nil {
					t.Fatalf("ReceiveControl failed: %v", err)
				}
				return n
			},
			cmd:       ControlResume,
			wantState: StatePaused,
		},
		{
			name:      "cancel offer",
			setup:     func(t *testing.T, c *Coordinator) uint32 { return receiveOffer(t, c, 0, testFileSize) },
			cmd:       ControlCancel,
			wantState: StateCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCoordinator()
			n := tt.setup(t, c)
			tr, err := c.Get(testOnlineFriend, n)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}

			err = c.Control(testOnlineFriend, n, tt.cmd)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Control(%v) unexpected error: %v", tt.cmd, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Control(%v) error = %v, want %v", tt.cmd, err, tt.wantErr)
			}
			if tr.State() != tt.wantState {
				t.Errorf("State() = %v, want %v", tr.State(), tt.wantState)
			}
		})
	}
}

func TestControlErrors(t *testing.T) {
	c, _, engine := newTestCoordinator()
	n := sendRunning(t, c, testFileSize)

	if err := c.Control(testMissingFriend, n, ControlPause); !errors.Is(err, ControlErrFriendNotFound) {
		t.Errorf("error = %v, want %v", err, ControlErrFriendNotFound)
	}
	if err := c.Control(testOfflineFriend, n, ControlPause); !errors.Is(err, ControlErrFriendNotConnected) {
		t.Errorf("error = %v, want %v", err, ControlErrFriendNotConnected)
	}
	if err := c.Control(testOnlineFriend, 42, ControlPause); !errors.Is(err, ControlErrNotFound) {
		t.Errorf("error = %v, want %v", err, ControlErrNotFound)
	}

	engine.failControl = true
	if err := c.Control(testOnlineFriend, n, ControlPause); !errors.Is(err, ControlErrSendQ) {
		t.Errorf("error = %v, want %v", err, ControlErrSendQ)
	}
	tr, _ := c.Get(testOnlineFriend, n)
	if tr.State() != StateRunning {
		t.Errorf("failed control changed state to %v", tr.State())
	}
}

func TestCancelThenSendChunk(t *testing.T) {
	c, _, engine := newTestCoordinator()
	n := sendRunning(t, c, testFileSize)
	tr, _ := c.Get(testOnlineFriend, n)

	if _, err := c.ChunkRequest(testOnlineFriend, n, 0, 10); err != nil {
		t.Fatalf("ChunkRequest failed: %v", err)
	}
	if err := c.Control(testOnlineFriend, n, ControlCancel); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if tr.State() != StateCancelled {
		t.Errorf("State() = %v, want Cancelled", tr.State())
	}
	if got := engine.controls[len(engine.controls)-1]; got != interfaces.RawFileControlCancel {
		t.Errorf("engine control = %d, want cancel", got)
	}

	err := c.SendChunk(testOnlineFriend, n, 0, make([]byte, 10))
	if !errors.Is(err, SendChunkErrNotFound) {
		t.Errorf("SendChunk after cancel error = %v, want %v", err, SendChunkErrNotFound)
	}
	if err := c.Control(testOnlineFriend, n, ControlCancel); !errors.Is(err, ControlErrNotFound) {
		t.Errorf("second cancel error = %v, want %v", err, ControlErrNotFound)
	}
}

func TestSendChunkFlowControl(t *testing.T) {
	c, _, engine := newTestCoordinator()
	n := sendRunning(t, c, 20)
	tr, _ := c.Get(testOnlineFriend, n)

	if err := c.SendChunk(testOnlineFriend, n, 0, make([]byte, 10)); !errors.Is(err, SendChunkErrInvalidPosition) {
		t.Errorf("unrequested chunk error = %v, want %v", err, SendChunkErrInvalidPosition)
	}

	if _, err := c.ChunkRequest(testOnlineFriend, n, 0, 10); err != nil {
		t.Fatalf("ChunkRequest failed: %v", err)
	}
	if err := c.SendChunk(testOnlineFriend, n, 5, make([]byte, 10)); !errors.Is(err, SendChunkErrInvalidPosition) {
		t.Errorf("wrong position error = %v, want %v", err, SendChunkErrInvalidPosition)
	}
	if err := c.SendChunk(testOnlineFriend, n, 0, make([]byte, 9)); !errors.Is(err, SendChunkErrInvalidLength) {
		t.Errorf("short chunk error = %v, want %v", err, SendChunkErrInvalidLength)
	}
	if err := c.SendChunk(testOnlineFriend, n, 0, make([]byte, 10)); err != nil {
		t.Fatalf("SendChunk failed: %v", err)
	}
	if tr.Position() != 10 {
		t.Errorf("Position() = %d, want 10", tr.Position())
	}
	if err := c.SendChunk(testOnlineFriend, n, 0, make([]byte, 10)); !errors.Is(err, SendChunkErrInvalidPosition) {
		t.Errorf("replayed chunk error = %v, want %v", err, SendChunkErrInvalidPosition)
	}

	if _, err := c.ChunkRequest(testOnlineFriend, n, 10, 10); err != nil {
		t.Fatalf("ChunkRequest failed: %v", err)
	}
	engine.failChunk = true
	if err := c.SendChunk(testOnlineFriend, n, 10, make([]byte, 10)); !errors.Is(err, SendChunkErrSendFailed) {
		t.Errorf("engine failure error = %v, want %v", err, SendChunkErrSendFailed)
	}
	engine.failChunk = false
	if err := c.SendChunk(testOnlineFriend, n, 10, make([]byte, 10)); err != nil {
		t.Fatalf("retry SendChunk failed: %v", err)
	}

	if _, err := c.ChunkRequest(testOnlineFriend, n, 20, 0); err != nil {
		t.Fatalf("final ChunkRequest failed: %v", err)
	}
	if tr.State() != StateFinished {
		t.Errorf("State() = %v, want Finished", tr.State())
	}
	if c.Active() != 0 {
		t.Errorf("Active() = %d, want 0", c.Active())
	}
	if len(engine.chunks) != 2 {
		t.Errorf("engine saw %d chunks, want 2", len(engine.chunks))
	}
}

func TestSendChunkStates(t *testing.T) {
	c, _, _ := newTestCoordinator()

	in := receiveOffer(t, c, 0, testFileSize)
	if err := c.SendChunk(testOnlineFriend, in, 0, []byte("x")); !errors.Is(err, SendChunkErrNotFound) {
		t.Errorf("SendChunk on inbound transfer error = %v, want %v", err, SendChunkErrNotFound)
	}

	n := sendRunning(t, c, testFileSize)
	if _, err := c.ChunkRequest(testOnlineFriend, n, 0, 1); err != nil {
		t.Fatalf("ChunkRequest failed: %v", err)
	}
	if err := c.Control(testOnlineFriend, n, ControlPause); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if err := c.SendChunk(testOnlineFriend, n, 0, []byte("x")); !errors.Is(err, SendChunkErrNotSending) {
		t.Errorf("SendChunk while paused error = %v, want %v", err, SendChunkErrNotSending)
	}
	if err := c.SendChunk(testOfflineFriend, n, 0, []byte("x")); !errors.Is(err, SendChunkErrFriendNotConnected) {
		t.Errorf("error = %v, want %v", err, SendChunkErrFriendNotConnected)
	}
	if err := c.SendChunk(testMissingFriend, n, 0, []byte("x")); !errors.Is(err, SendChunkErrFriendNotFound) {
		t.Errorf("error = %v, want %v", err, SendChunkErrFriendNotFound)
	}
}

func TestSendChunkEmptyFinishesStream(t *testing.T) {
	c, _, _ := newTestCoordinator()
	n := sendRunning(t, c, SizeUnknown)
	tr, _ := c.Get(testOnlineFriend, n)

	if _, err := c.ChunkRequest(testOnlineFriend, n, 0, 4); err != nil {
		t.Fatalf("ChunkRequest failed: %v", err)
	}
	if err := c.SendChunk(testOnlineFriend, n, 0, []byte("data")); err != nil {
		t.Fatalf("SendChunk failed: %v", err)
	}
	if err := c.SendChunk(testOnlineFriend, n, 0, nil); !errors.Is(err, SendChunkErrInvalidPosition) {
		t.Errorf("empty chunk at old position error = %v, want %v", err, SendChunkErrInvalidPosition)
	}
	if err := c.SendChunk(testOnlineFriend, n, 4, nil); err != nil {
		t.Fatalf("empty SendChunk failed: %v", err)
	}
	if tr.State() != StateFinished {
		t.Errorf("State() = %v, want Finished", tr.State())
	}
}

func TestSeek(t *testing.T) {
	c, _, engine := newTestCoordinator()
	n := receiveOffer(t, c, 0, testFileSize1K)
	tr, _ := c.Get(testOnlineFriend, n)

	if err := c.Seek(testOnlineFriend, n, testFileSize1K); !errors.Is(err, SeekErrDeniedOutOfBounds) {
		t.Errorf("seek past end error = %v, want %v", err, SeekErrDeniedOutOfBounds)
	}
	if err := c.Seek(testOnlineFriend, n, 512); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if tr.Position() != 512 {
		t.Errorf("Position() = %d, want 512", tr.Position())
	}
	if len(engine.seeks) != 1 || engine.seeks[0] != 512 {
		t.Errorf("engine seeks = %v, want [512]", engine.seeks)
	}

	if err := c.Control(testOnlineFriend, n, ControlResume); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if _, err := c.ReceiveChunk(testOnlineFriend, n, 512, []byte("abc")); err != nil {
		t.Fatalf("ReceiveChunk failed: %v", err)
	}
	if err := c.Seek(testOnlineFriend, n, 0); !errors.Is(err, SeekErrDeniedOutOfBounds) {
		t.Errorf("seek after first chunk error = %v, want %v", err, SeekErrDeniedOutOfBounds)
	}

	if err := c.Seek(testOnlineFriend, 99, 0); !errors.Is(err, SeekErrNotFound) {
		t.Errorf("error = %v, want %v", err, SeekErrNotFound)
	}
	if err := c.Seek(testOfflineFriend, n, 0); !errors.Is(err, SeekErrFriendNotConnected) {
		t.Errorf("error = %v, want %v", err, SeekErrFriendNotConnected)
	}

	stream := sendRunning(t, c, SizeUnknown)
	engine.failSeek = true
	if err := c.Seek(testOnlineFriend, stream, 1<<40); !errors.Is(err, SeekErrSendFailed) {
		t.Errorf("error = %v, want %v", err, SeekErrSendFailed)
	}
}

func TestReceiveChunk(t *testing.T) {
	c, _, _ := newTestCoordinator()
	n := receiveOffer(t, c, 3, 10)
	tr, _ := c.Get(testOnlineFriend, n)

	if _, err := c.ReceiveChunk(testOnlineFriend, n, 0, []byte("abc")); !errors.Is(err, ErrNotAccepting) {
		t.Errorf("chunk before accept error = %v, want %v", err, ErrNotAccepting)
	}
	if tr.Position() != 0 {
		t.Errorf("chunk before accept moved position to %d", tr.Position())
	}

	if err := c.Control(testOnlineFriend, n, ControlResume); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if _, err := c.ReceiveChunk(testOnlineFriend, n, 0, []byte("abcd")); err != nil {
		t.Fatalf("ReceiveChunk failed: %v", err)
	}
	if _, err := c.ReceiveChunk(testOnlineFriend, n, 2, []byte("zz")); !errors.Is(err, ErrStalePosition) {
		t.Errorf("stale chunk error = %v, want %v", err, ErrStalePosition)
	}
	if _, err := c.ReceiveChunk(testOnlineFriend, n, 4, bytes.Repeat([]byte{1}, 7)); !errors.Is(err, ErrNotAccepting) {
		t.Errorf("oversized chunk error = %v, want %v", err, ErrNotAccepting)
	}
	if tr.Position() != 4 {
		t.Errorf("Position() = %d, want 4", tr.Position())
	}

	if _, err := c.ReceiveChunk(testOnlineFriend, n, 10, nil); err != nil {
		t.Fatalf("final ReceiveChunk failed: %v", err)
	}
	if tr.State() != StateFinished {
		t.Errorf("State() = %v, want Finished", tr.State())
	}
	if _, err := c.ReceiveChunk(testOnlineFriend, n, 10, []byte("x")); !errors.Is(err, ErrUnknownTransfer) {
		t.Errorf("chunk after finish error = %v, want %v", err, ErrUnknownTransfer)
	}
}

func TestReceiveOfferValidation(t *testing.T) {
	c, _, _ := newTestCoordinator()

	if _, err := c.ReceiveOffer(testOnlineFriend, 5, KindData, 1, [32]byte{}, []byte("x")); !errors.Is(err, ErrUnknownTransfer) {
		t.Errorf("offer with send-side number error = %v, want %v", err, ErrUnknownTransfer)
	}
	n := receiveOffer(t, c, 0, 1)
	if _, err := c.ReceiveOffer(testOnlineFriend, n, KindData, 1, [32]byte{}, []byte("x")); !errors.Is(err, ErrDuplicateTransfer) {
		t.Errorf("duplicate offer error = %v, want %v", err, ErrDuplicateTransfer)
	}

	out := sendRunning(t, c, 1)
	if out == n {
		t.Errorf("send and receive numbers collide at %d", n)
	}

	if _, err := c.ReceiveOffer(testOfflineFriend, ReceiveFileNumber(1), KindData, 1, [32]byte{}, []byte("x")); !errors.Is(err, ErrFriendOffline) {
		t.Errorf("offer from offline friend error = %v, want %v", err, ErrFriendOffline)
	}
	longName := bytes.Repeat([]byte{'a'}, 256)
	if _, err := c.ReceiveOffer(testOnlineFriend, ReceiveFileNumber(2), KindData, 1, [32]byte{}, longName); err == nil {
		t.Error("offer with oversized filename was accepted")
	}
	if _, err := c.ReceiveOffer(testOnlineFriend, ReceiveFileNumber(3), KindAvatar, 0, [32]byte{}, nil); err != nil {
		t.Errorf("offer without filename failed: %v", err)
	}
}

func TestReceiveChunkPositionNeverWraps(t *testing.T) {
	c, _, _ := newTestCoordinator()
	n := receiveOffer(t, c, 0, SizeUnknown)
	tr, _ := c.Get(testOnlineFriend, n)
	if err := c.Control(testOnlineFriend, n, ControlResume); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}

	if _, err := c.ReceiveChunk(testOnlineFriend, n, 10, []byte("abc")); err != nil {
		t.Fatalf("ReceiveChunk failed: %v", err)
	}
	if _, err := c.ReceiveChunk(testOnlineFriend, n, math.MaxUint64-1, []byte("wrap")); !errors.Is(err, ErrNotAccepting) {
		t.Errorf("overflowing chunk error = %v, want %v", err, ErrNotAccepting)
	}
	if tr.Position() != 13 {
		t.Errorf("Position() = %d, want 13", tr.Position())
	}

	if _, err := c.ReceiveChunk(testOnlineFriend, n, math.MaxUint64-4, []byte("edge")); err != nil {
		t.Fatalf("chunk ending at the last position failed: %v", err)
	}
	if tr.Position() != math.MaxUint64 {
		t.Errorf("Position() = %d, want MaxUint64", tr.Position())
	}
}

func TestReceiveControl(t *testing.T) {
	c, _, _ := newTestCoordinator()
	n := sendRunning(t, c, testFileSize)
	tr, _ := c.Get(testOnlineFriend, n)

	if _, err := c.ReceiveControl(testOnlineFriend, n, ControlPause); err != nil {
		t.Fatalf("peer pause failed: %v", err)
	}
	if !tr.PausedByPeer() || tr.State() != StatePaused {
		t.Errorf("after peer pause: pausedByPeer=%v state=%v", tr.PausedByPeer(), tr.State())
	}
	if _, err := c.ReceiveControl(testOnlineFriend, n, ControlResume); err != nil {
		t.Fatalf("peer resume failed: %v", err)
	}
	if tr.State() != StateRunning {
		t.Errorf("State() = %v, want Running", tr.State())
	}

	in := receiveOffer(t, c, 0, testFileSize)
	if _, err := c.ReceiveControl(testOnlineFriend, in, ControlResume); !errors.Is(err, ErrNotAccepting) {
		t.Errorf("peer accepting its own offer error = %v, want %v", err, ErrNotAccepting)
	}

	if _, err := c.ReceiveControl(testOnlineFriend, n, ControlCancel); err != nil {
		t.Fatalf("peer cancel failed: %v", err)
	}
	if tr.State() != StateCancelled {
		t.Errorf("State() = %v, want Cancelled", tr.State())
	}
	if _, err := c.ReceiveControl(testOnlineFriend, n, ControlCancel); !errors.Is(err, ErrUnknownTransfer) {
		t.Errorf("error = %v, want %v", err, ErrUnknownTransfer)
	}
}

func TestCancelFriend(t *testing.T) {
	c, friends, _ := newTestCoordinator()
	friends.add(2, true)

	a := sendRunning(t, c, testFileSize)
	b := receiveOffer(t, c, 0, testFileSize)
	other, err := c.Send(2, KindData, testFileSize, nil, []byte(testFilename))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	ta, _ := c.Get(testOnlineFriend, a)
	tb, _ := c.Get(testOnlineFriend, b)

	if got := c.CancelFriend(testOnlineFriend); got != 2 {
		t.Errorf("CancelFriend() = %d, want 2", got)
	}
	if ta.State() != StateCancelled || tb.State() != StateCancelled {
		t.Errorf("states after CancelFriend: %v, %v", ta.State(), tb.State())
	}
	if len(c.Transfers(testOnlineFriend)) != 0 {
		t.Error("friend still owns transfers")
	}
	if _, err := c.Get(2, other); err != nil {
		t.Errorf("other friend's transfer was affected: %v", err)
	}
}

func TestRawConversions(t *testing.T) {
	for _, k := range []Kind{KindData, KindAvatar} {
		if got, ok := KindFromRaw(k.Raw()); !ok || got != k {
			t.Errorf("KindFromRaw(%d) = %v, %v", k.Raw(), got, ok)
		}
	}
	if _, ok := KindFromRaw(9); ok {
		t.Error("KindFromRaw accepted an unknown kind")
	}
	for _, ctl := range []Control{ControlResume, ControlPause, ControlCancel} {
		if got, ok := ControlFromRaw(ctl.Raw()); !ok || got != ctl {
			t.Errorf("ControlFromRaw(%d) = %v, %v", ctl.Raw(), got, ok)
		}
	}
	if _, ok := ControlFromRaw(3); ok {
		t.Error("ControlFromRaw accepted an unknown control")
	}
	if !IsReceiveFileNumber(ReceiveFileNumber(0)) || IsReceiveFileNumber(255) {
		t.Error("receive file number namespace is wrong")
	}
}
