package utilities

// CreateNonBlockingSender wraps a channel in a function that never blocks the
// caller. If the channel is full it is drained and the send retried; a still
// full or closed channel drops the message.
func CreateNonBlockingSender[T any](ch chan T) func(T) {
	return func(msg T) {
		select {
		case ch <- msg:
		default:
			drainChannel(ch)
			select {
			case ch <- msg:
			default:
			}
		}
	}
}

func drainChannel[T any](ch chan T) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
