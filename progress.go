package orderpdf

// Listener receives progress after every processed item. Calls are made
// synchronously from the generating goroutine; implementations must return
// promptly.
type Listener interface {
	Progress(done, total int)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(done, total int)

func (f ListenerFunc) Progress(done, total int) { f(done, total) }

// Update is one progress notification.
type Update struct {
	Done, Total int
}

// ChanListener forwards updates to a channel. Updates are dropped when the
// channel is full, so a slow reader never delays generation.
type ChanListener chan<- Update

func (c ChanListener) Progress(done, total int) {
	select {
	case c <- Update{Done: done, Total: total}:
	default:
	}
}

type nopListener struct{}

func (nopListener) Progress(int, int) {}

// progress tracks the running counter of one generation call.
type progress struct {
	l           Listener
	done, total int
}

func (p *progress) step() {
	p.done++
	p.l.Progress(p.done, p.total)
}
