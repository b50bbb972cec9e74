package wrapgen

import (
	"fmt"
	"io"
)

// emitter writes generated text. After the first write error it writes
// nothing and keeps that error.
type emitter struct {
	w   io.Writer
	err error
}

func newEmitter(w io.Writer) *emitter {
	return &emitter{w: w}
}

func (e *emitter) print(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *emitter) printf(format string, args ...any) {
	e.print(fmt.Sprintf(format, args...))
}
