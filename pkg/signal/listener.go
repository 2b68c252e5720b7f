package signal

// Listener receives push notifications from a Manager.
type Listener interface {
	OnSignal(s Signal)
}

// FuncListener adapts a function to the Listener interface. It is used
// through a pointer so that it can be removed again.
type FuncListener struct {
	fn func(Signal)
}

// NewListener wraps fn as a removable listener.
func NewListener(fn func(Signal)) *FuncListener {
	return &FuncListener{fn: fn}
}

// OnSignal calls the wrapped function.
func (l *FuncListener) OnSignal(s Signal) {
	l.fn(s)
}
