package event

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Executor runs tasks on some execution context, such as a UI thread. An
// Executor used with NewOrderedAdapter must run tasks in submission order.
type Executor interface {
	Execute(task func())
}

// ExecutorFunc adapts a posting function to Executor.
type ExecutorFunc func(task func())

// Execute calls f(task).
func (f ExecutorFunc) Execute(task func()) {
	f(task)
}

// orderedAdapter re-posts every event to an executor.
type orderedAdapter struct {
	target Listener
	exec   Executor
}

// NewOrderedAdapter returns a Listener that hands each event to exec for
// delivery to target. Payloads are copied first, so the engine may reuse its
// buffers once the dispatcher returns. As long as exec runs tasks in the
// order they are submitted, target observes exactly the order the dispatcher
// produced.
func NewOrderedAdapter(target Listener, exec Executor) Listener {
	if target == nil {
		target = BaseListener{}
	}
	return &orderedAdapter{target: target, exec: exec}
}

func (a *orderedAdapter) post(e Event) {
	c := e.clone()
	a.exec.Execute(func() { c.deliver(a.target) })
}

func (a *orderedAdapter) OnSelfConnectionStatus(e SelfConnectionStatus)     { a.post(e) }
func (a *orderedAdapter) OnFriendConnectionStatus(e FriendConnectionStatus) { a.post(e) }
func (a *orderedAdapter) OnFriendRequest(e FriendRequest)                   { a.post(e) }
func (a *orderedAdapter) OnFriendMessage(e FriendMessage)                   { a.post(e) }
func (a *orderedAdapter) OnFriendName(e FriendName)                         { a.post(e) }
func (a *orderedAdapter) OnFriendStatus(e FriendStatus)                     { a.post(e) }
func (a *orderedAdapter) OnFriendStatusMessage(e FriendStatusMessage)       { a.post(e) }
func (a *orderedAdapter) OnFriendTyping(e FriendTyping)                     { a.post(e) }
func (a *orderedAdapter) OnFriendReadReceipt(e FriendReadReceipt)           { a.post(e) }
func (a *orderedAdapter) OnFileControl(e FileControl)                       { a.post(e) }
func (a *orderedAdapter) OnFileReceive(e FileReceive)                       { a.post(e) }
func (a *orderedAdapter) OnFileReceiveChunk(e FileReceiveChunk)             { a.post(e) }
func (a *orderedAdapter) OnFileChunkRequest(e FileChunkRequest)             { a.post(e) }
func (a *orderedAdapter) OnFriendLossyPacket(e FriendLossyPacket)           { a.post(e) }
func (a *orderedAdapter) OnFriendLosslessPacket(e FriendLosslessPacket)     { a.post(e) }

// RunQueue is an Executor that runs tasks one at a time on its own
// goroutine, in submission order. It never drops or reorders tasks.
type RunQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	closed  bool
	stopped chan struct{}
}

// NewRunQueue starts a run queue.
func NewRunQueue() *RunQueue {
	q := &RunQueue{stopped: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Execute enqueues task. Tasks submitted after Close are discarded.
func (q *RunQueue) Execute(task func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		logrus.WithFields(logrus.Fields{
			"function": "RunQueue.Execute",
		}).Warn("Task submitted to closed run queue")
		return
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
}

func (q *RunQueue) loop() {
	defer close(q.stopped)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}

// Close stops accepting tasks and waits until every queued task has run.
// Close must not be called from a task running on the queue.
func (q *RunQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.stopped
}
