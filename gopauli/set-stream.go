package gopauli

import (
	"fmt"
	"io"
	"strings"
)

// SetStream is a channel pipeline of SetState instances.
// Each stage spawns a goroutine and returns the next stream in the chain.
type SetStream struct {
	Outlet chan SetState
}

func NewSetStream() *SetStream {
	stream := &SetStream{
		Outlet: make(chan SetState),
	}
	return stream
}

func StreamSet(S SetState) *SetStream {
	next := NewSetStream()

	go func() {
		next.Outlet <- S.MakeCopy()
		next.Close()
	}()

	return next
}

func (stream *SetStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *SetStream) PushSet(S SetState) {
	stream.Outlet <- S.MakeCopy()
}

func (stream *SetStream) PullSet() SetState {
	S := <-stream.Outlet
	return S
}

func (stream *SetStream) PullAll() int {
	count := int(0)
	for S := range stream.Outlet {
		count++
		S.Reclaim()
	}
	return count
}

func (stream *SetStream) Print(
	out io.WriteCloser,
	opts PrintOpts) *SetStream {

	next := &SetStream{
		Outlet: make(chan SetState, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for S := range stream.Outlet {
			if len(opts.Label) > 0 {
				buf.WriteString(opts.Label)
			}
			buf.WriteByte(',')

			count++
			fmt.Fprintf(&buf, "%06d,", count)
			S.WriteAsString(&buf, opts)
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- S
		}
		out.Close()
		next.Close()
	}()

	return next
}

// AddSetOpts controls how AddTo feeds a downstream SetAdder.
type AddSetOpts struct {

	// AutoCloseTarget closes the target (when it implements io.Closer) once the stream drains.
	AutoCloseTarget bool
}

func (stream *SetStream) AddTo(target SetAdder, opts AddSetOpts) *SetStream {
	next := &SetStream{
		Outlet: make(chan SetState, 1),
	}

	go func() {
		for S := range stream.Outlet {
			wasAdded := target.TryAddSet(S)
			if wasAdded {
				next.Outlet <- S
			} else {
				S.Reclaim()
			}
		}
		if opts.AutoCloseTarget {
			if closer, ok := target.(io.Closer); ok {
				closer.Close()
			}
		}
		next.Close()
	}()

	return next
}

func SelectFromCatalog(cat Catalog, sel SetSelector) *SetStream {
	next := &SetStream{
		Outlet: make(chan SetState, 1),
	}

	onHit := make(chan SetState, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		for S := range onHit {
			if sel.SelectsSet(S) {
				next.Outlet <- S
			} else {
				S.Reclaim()
			}
		}
		next.Close()
	}()

	return next
}

func (stream *SetStream) SelectFromStream(sel SetSelector) *SetStream {
	next := &SetStream{
		Outlet: make(chan SetState, 1),
	}

	go func() {
		for S := range stream.Outlet {
			keep := false
			if sel.SelectsSet(S) {
				keep = true
				if sel.Algebra != "" {
					name, err := S.Algebra()
					keep = err == nil && name == sel.Algebra
				}
			}
			if keep {
				next.Outlet <- S
			} else {
				S.Reclaim()
			}
		}
		next.Close()
	}()

	return next
}

func (stream *SetStream) Canonize() *SetStream {
	next := &SetStream{
		Outlet: make(chan SetState, 1),
	}

	go func() {
		for S := range stream.Outlet {
			err := S.Canonize()
			if err != nil {
				panic(err)
			}
			next.Outlet <- S
		}
		next.Close()
	}()

	return next
}
