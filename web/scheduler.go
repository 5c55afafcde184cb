//go:build js && wasm

package phosphorweb

import (
	"syscall/js"
	"time"

	"github.com/phroun/phosphor"
)

// Scheduler runs compositor callbacks on the browser event loop
type Scheduler struct{}

func (Scheduler) RequestFrame(fn func()) phosphor.Disposable {
	return schedule("requestAnimationFrame", "cancelAnimationFrame", fn)
}

func (Scheduler) AfterFunc(d time.Duration, fn func()) phosphor.Disposable {
	return schedule("setTimeout", "clearTimeout", fn, d.Milliseconds())
}

func (Scheduler) Every(d time.Duration, fn func()) phosphor.Disposable {
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	id := js.Global().Call("setInterval", cb, d.Milliseconds())
	return phosphor.Once(func() {
		js.Global().Call("clearInterval", id)
		cb.Release()
	})
}

// schedule registers a one-shot callback; the js.Func is released after it
// runs or when it is cancelled, whichever comes first
func schedule(add, cancel string, fn func(), args ...any) phosphor.Disposable {
	var (
		cb   js.Func
		done bool
	)
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		if done {
			return nil
		}
		done = true
		cb.Release()
		fn()
		return nil
	})
	id := js.Global().Call(add, append([]any{cb}, args...)...)
	return phosphor.Once(func() {
		if done {
			return
		}
		done = true
		js.Global().Call(cancel, id)
		cb.Release()
	})
}
