package message

// Callback is invoked synchronously with every Message produced during a
// run, on the goroutine that is actually executing the step or sequence.
type Callback func(Message)

// Send is the single choke point through which every lifecycle and output
// event passes: it invokes the callback, if any, and pushes onto the given
// CommChannel, if any. Keeping both side effects behind one function
// guarantees they can never drift apart — a caller can never update the
// callback without also updating the queue, or vice versa.
//
// comm may be nil, in which case the message is not enqueued anywhere; it
// is still delivered to cb. This mirrors send_message's documented
// behavior for a null CommChannel pointer.
func Send(cb Callback, comm *CommChannel, m Message) {
	if cb != nil {
		cb(m)
	}
	if comm != nil {
		comm.Push(m)
	}
}
