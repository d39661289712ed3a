package harmony

// coroutine is the cooperative stack-switching primitive behind generators
// and async functions. The body runs on its own goroutine, but exactly one
// side is ever runnable: every handoff is a rendezvous on an unbuffered
// channel, so the observable scheduling stays single-threaded.
type coroutine struct {
	resumeCh chan Completion
	yieldCh  chan coroutineMsg

	started  bool
	finished bool
}

type coroutineMsg struct {
	// completion carries the yielded/awaited value, or the body completion
	// when done is set.
	completion Completion
	done       bool
	await      bool
}

func newCoroutine() *coroutine {
	return &coroutine{
		resumeCh: make(chan Completion),
		yieldCh:  make(chan coroutineMsg),
	}
}

// start launches body and runs it until its first suspension point or until
// it completes.
func (co *coroutine) start(body func() Completion) coroutineMsg {
	co.started = true
	go func() {
		c := body()
		co.finished = true
		co.yieldCh <- coroutineMsg{completion: c, done: true}
	}()
	return <-co.yieldCh
}

// resume hands v to the suspended body and blocks until the next suspension
// or completion.
func (co *coroutine) resume(v Completion) coroutineMsg {
	co.resumeCh <- v
	return <-co.yieldCh
}

// yield suspends the body, handing msg to the driver; the returned
// completion is what the driver injected on resumption.
func (co *coroutine) yield(msg coroutineMsg) Completion {
	co.yieldCh <- msg
	return <-co.resumeCh
}

// abandon marks a coroutine finished without running its body. Its callers use
// it only on coroutines that were never started, so no goroutine exists.
func (co *coroutine) abandon() {
	co.finished = true
}
