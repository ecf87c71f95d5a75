package mqtt

import "log"

// pendingMsg is a serialized MQTT message held for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that holds messages while the broker is
// unreachable. When full the oldest message is dropped: for a 20Hz EMG stream
// the most recent readings are the useful ones.
// Not safe for concurrent use; caller must synchronize.
type ringBuffer struct {
	buf     []pendingMsg
	head    int // next write position
	count   int
	dropped int // messages overwritten since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{buf: make([]pendingMsg, capacity)}
}

func (r *ringBuffer) push(msg pendingMsg) {
	r.buf[r.head] = msg
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
		return
	}
	// head was pointing at the oldest entry, which is now overwritten
	if r.dropped == 0 {
		log.Printf("mqtt: offline buffer full (%d messages), dropping oldest", len(r.buf))
	}
	r.dropped++
}

// drain returns buffered messages oldest first and empties the buffer.
func (r *ringBuffer) drain() []pendingMsg {
	if r.count == 0 {
		return nil
	}

	out := make([]pendingMsg, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}

	if r.dropped > 0 {
		log.Printf("mqtt: dropped %d messages while offline", r.dropped)
	}
	r.count = 0
	r.head = 0
	r.dropped = 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
