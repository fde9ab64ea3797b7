package friend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxsession/crypto"
	"github.com/opd-ai/toxsession/interfaces"
	"github.com/opd-ai/toxsession/limits"
)

// DeleteHook runs before a friend is removed from the registry.
type DeleteHook func(friendNumber uint32)

// Registry owns the friends of one session.
type Registry struct {
	selfKey [32]byte
	engine  interfaces.Engine
	clock   clock.Clock

	// slots is indexed by friend number; nil marks a free number.
	slots    []*Friend
	byKey    map[[32]byte]uint32
	count    int
	onDelete []DeleteHook
}

// NewRegistry creates an empty registry for the session whose public key is
// selfKey. engine may be nil in tests that never contact the network.
func NewRegistry(selfKey [32]byte, engine interfaces.Engine, clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.New()
	}
	return &Registry{
		selfKey: selfKey,
		engine:  engine,
		clock:   clk,
		byKey:   make(map[[32]byte]uint32),
	}
}

// OnDelete registers a hook invoked before each friend removal.
func (r *Registry) OnDelete(hook DeleteHook) {
	r.onDelete = append(r.onDelete, hook)
}

// AddFriend validates a 38-byte address and sends a friend request carrying
// message. The new friend's number is returned.
func (r *Registry) AddFriend(address, message []byte) (uint32, error) {
	if address == nil || message == nil {
		return 0, AddErrNull
	}
	verr := limits.ValidateFriendRequest(message)
	if errors.Is(verr, limits.ErrMessageTooLarge) {
		return 0, AddErrTooLong
	}

	addr, err := crypto.ParseAddress(address)
	if err != nil {
		if errors.Is(err, crypto.ErrBadChecksum) {
			return 0, AddErrBadChecksum
		}
		return 0, AddErrNull
	}
	if errors.Is(verr, limits.ErrMessageEmpty) {
		return 0, AddErrNoMessage
	}
	if addr.PublicKey == r.selfKey {
		return 0, AddErrOwnKey
	}

	if n, exists := r.byKey[addr.PublicKey]; exists {
		return r.resendWithNewNospam(n, addr.Nospam, message)
	}

	n, err := r.insert(addr.PublicKey, addr.Nospam)
	if err != nil {
		return 0, err
	}

	f := r.slots[n]
	f.RequestPending = true
	f.RequestMessage = append([]byte(nil), message...)

	if r.engine != nil {
		if err := r.engine.SendFriendRequest(addr.PublicKey, addr.Nospam, message); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":      "AddFriend",
				"friend_number": n,
				"error":         err.Error(),
			}).Error("Engine rejected friend request")
			r.remove(n)
			return 0, fmt.Errorf("%w: %v", AddErrMalloc, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":      "AddFriend",
		"friend_number": n,
		"public_key":    fmt.Sprintf("%X", addr.PublicKey[:8]),
	}).Info("Friend request sent")

	return n, nil
}

// resendWithNewNospam handles AddFriend for a key that is already a friend.
func (r *Registry) resendWithNewNospam(n uint32, nospam crypto.Nospam, message []byte) (uint32, error) {
	f := r.slots[n]
	if f.Nospam == nospam {
		return 0, AddErrAlreadySent
	}

	logrus.WithFields(logrus.Fields{
		"function":      "AddFriend",
		"friend_number": n,
		"old_nospam":    f.Nospam.Uint32(),
		"new_nospam":    nospam.Uint32(),
	}).Info("Updating nospam of existing friend")

	f.Nospam = nospam
	if f.RequestPending && r.engine != nil {
		f.RequestMessage = append([]byte(nil), message...)
		if err := r.engine.SendFriendRequest(f.PublicKey, nospam, message); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":      "AddFriend",
				"friend_number": n,
				"error":         err.Error(),
			}).Warn("Failed to resend friend request with new nospam")
		}
	}
	return 0, AddErrSetNewNospam
}

// AddFriendNoRequest adds a friend by public key without sending a request.
// It is used to accept inbound requests or to pre-authorise a peer.
func (r *Registry) AddFriendNoRequest(publicKey []byte) (uint32, error) {
	if len(publicKey) != crypto.KeySize {
		return 0, AddErrNull
	}

	var pk [32]byte
	copy(pk[:], publicKey)

	if pk == r.selfKey {
		return 0, AddErrOwnKey
	}
	if _, exists := r.byKey[pk]; exists {
		return 0, AddErrAlreadySent
	}

	n, err := r.insert(pk, crypto.Nospam{})
	if err != nil {
		return 0, err
	}

	if r.engine != nil {
		if err := r.engine.AddFriend(pk); err != nil {
			r.remove(n)
			return 0, fmt.Errorf("%w: %v", AddErrMalloc, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":      "AddFriendNoRequest",
		"friend_number": n,
		"public_key":    fmt.Sprintf("%X", pk[:8]),
	}).Info("Friend added without request")

	return n, nil
}

// insert allocates the smallest free number for a new friend.
func (r *Registry) insert(pk [32]byte, nospam crypto.Nospam) (uint32, error) {
	n := r.allocate()
	if n >= limits.MaxFriends {
		return 0, AddErrMalloc
	}

	f := &Friend{
		Number:    n,
		PublicKey: pk,
		Nospam:    nospam,
		LastSeen:  r.clock.Now(),
	}
	if int(n) == len(r.slots) {
		r.slots = append(r.slots, f)
	} else {
		r.slots[n] = f
	}
	r.byKey[pk] = n
	r.count++
	return n, nil
}

// allocate returns the smallest unused friend number.
func (r *Registry) allocate() uint32 {
	for i, f := range r.slots {
		if f == nil {
			return uint32(i)
		}
	}
	return uint32(len(r.slots))
}

// remove releases a friend number without running delete hooks.
func (r *Registry) remove(n uint32) {
	f := r.slots[n]
	delete(r.byKey, f.PublicKey)
	r.slots[n] = nil
	r.count--

	for len(r.slots) > 0 && r.slots[len(r.slots)-1] == nil {
		r.slots = r.slots[:len(r.slots)-1]
	}
}

// Delete removes a friend, returning its number to the free list. Delete
// hooks run first so dependent state is torn down while the friend exists.
func (r *Registry) Delete(n uint32) error {
	f, err := r.lookup(n)
	if err != nil {
		return err
	}

	for _, hook := range r.onDelete {
		hook(n)
	}

	if r.engine != nil {
		if err := r.engine.RemoveFriend(f.PublicKey); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":      "Delete",
				"friend_number": n,
				"error":         err.Error(),
			}).Warn("Engine failed to drop friend")
		}
	}

	r.remove(n)

	logrus.WithFields(logrus.Fields{
		"function":      "Delete",
		"friend_number": n,
	}).Info("Friend deleted")
	return nil
}

// Restore replaces the registry content with persisted records, keeping
// their friend numbers.
func (r *Registry) Restore(records []Friend) error {
	slots := make([]*Friend, 0, len(records))
	byKey := make(map[[32]byte]uint32, len(records))

	for i := range records {
		rec := records[i].clone()
		if rec.PublicKey == r.selfKey {
			return fmt.Errorf("%w: own public key in friend list", ErrDuplicate)
		}
		if rec.Number >= limits.MaxFriends {
			return fmt.Errorf("friend number %d out of range", rec.Number)
		}
		if _, dup := byKey[rec.PublicKey]; dup {
			return fmt.Errorf("%w: key %X", ErrDuplicate, rec.PublicKey[:8])
		}
		for int(rec.Number) >= len(slots) {
			slots = append(slots, nil)
		}
		if slots[rec.Number] != nil {
			return fmt.Errorf("%w: number %d", ErrDuplicate, rec.Number)
		}

		rec.Connection = ConnectionNone
		rec.Typing = false
		slots[rec.Number] = &rec
		byKey[rec.PublicKey] = rec.Number
	}

	r.slots = slots
	r.byKey = byKey
	r.count = len(records)
	return nil
}

// Snapshot returns copies of every friend in ascending number order.
func (r *Registry) Snapshot() []Friend {
	out := make([]Friend, 0, r.count)
	for _, f := range r.slots {
		if f != nil {
			out = append(out, f.clone())
		}
	}
	return out
}

func (r *Registry) lookup(n uint32) (*Friend, error) {
	if int(n) >= len(r.slots) || r.slots[n] == nil {
		return nil, ErrNotFound
	}
	return r.slots[n], nil
}

// Get returns a copy of the friend record.
func (r *Registry) Get(n uint32) (Friend, error) {
	f, err := r.lookup(n)
	if err != nil {
		return Friend{}, err
	}
	return f.clone(), nil
}

// ByPublicKey resolves a public key to a friend number.
func (r *Registry) ByPublicKey(pk [32]byte) (uint32, error) {
	n, ok := r.byKey[pk]
	if !ok {
		return 0, ErrNotFound
	}
	return n, nil
}

// PublicKey returns the public key of a friend.
func (r *Registry) PublicKey(n uint32) ([32]byte, error) {
	f, err := r.lookup(n)
	if err != nil {
		return [32]byte{}, err
	}
	return f.PublicKey, nil
}

// Exists reports whether n refers to a current friend.
func (r *Registry) Exists(n uint32) bool {
	_, err := r.lookup(n)
	return err == nil
}

// IsConnected reports whether friend n exists and has a live connection.
func (r *Registry) IsConnected(n uint32) bool {
	f, err := r.lookup(n)
	return err == nil && f.IsOnline()
}

// List returns all friend numbers in ascending order.
func (r *Registry) List() []uint32 {
	out := make([]uint32, 0, r.count)
	for i, f := range r.slots {
		if f != nil {
			out = append(out, uint32(i))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of friends.
func (r *Registry) Len() int {
	return r.count
}

// SetConnection records a connection change and returns the previous value.
// A friend coming online answers any pending request.
func (r *Registry) SetConnection(n uint32, c ConnectionStatus) (ConnectionStatus, error) {
	f, err := r.lookup(n)
	if err != nil {
		return ConnectionNone, err
	}

	prev := f.Connection
	f.Connection = c
	f.LastSeen = r.clock.Now()
	if c != ConnectionNone && f.RequestPending {
		f.RequestPending = false
		f.RequestMessage = nil
	}
	if c == ConnectionNone {
		f.Typing = false
	}

	logrus.WithFields(logrus.Fields{
		"function":       "SetConnection",
		"friend_number":  n,
		"old_connection": prev,
		"new_connection": c,
	}).Debug("Friend connection status updated")
	return prev, nil
}

// SetName records a friend's display name.
func (r *Registry) SetName(n uint32, name string) error {
	f, err := r.lookup(n)
	if err != nil {
		return err
	}
	f.Name = name
	return nil
}

// SetStatusMessage records a friend's status message.
func (r *Registry) SetStatusMessage(n uint32, message string) error {
	f, err := r.lookup(n)
	if err != nil {
		return err
	}
	f.StatusMessage = message
	return nil
}

// SetStatus records a friend's user status.
func (r *Registry) SetStatus(n uint32, s Status) error {
	f, err := r.lookup(n)
	if err != nil {
		return err
	}
	f.Status = s
	return nil
}

// SetTyping records whether a friend is typing.
func (r *Registry) SetTyping(n uint32, typing bool) error {
	f, err := r.lookup(n)
	if err != nil {
		return err
	}
	f.Typing = typing
	return nil
}
