package engine

import (
	"context"
	"io"
)

// NextChunkFunc advances a streaming body. It returns the next chunk and the
// state for the following call, or io.EOF once the body is exhausted.
type NextChunkFunc func(state any) (chunk []byte, next any, err error)

// Chunked is a streaming body: Next is called first with Init and then with
// each returned state.
type Chunked struct {
	Next NextChunkFunc
	Init any
}

func (*Chunked) payload() {}

// Stopper is implemented by chunk states that hold resources.
type Stopper interface {
	Stop()
}

// Reader returns an io.ReadCloser fed by a goroutine that pulls chunks from
// Next. Once ctx is done reads fail with ctx.Err(), even while Next is
// blocked. The goroutine stops the last state when the body ends, fails or
// the reader is closed.
func (c *Chunked) Reader(ctx context.Context) io.ReadCloser {
	pr, pw := io.Pipe()
	r := &chunkReader{pr: pr, done: make(chan struct{})}
	release := context.AfterFunc(ctx, func() { pw.CloseWithError(ctx.Err()) })

	go func() {
		defer close(r.done)
		defer release()

		state := c.Init
		defer func() { stopState(state) }()
		for {
			chunk, next, err := c.Next(state)
			state = next
			if err == io.EOF {
				pw.Close()
				return
			}
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if len(chunk) == 0 {
				continue
			}
			if _, err := pw.Write(chunk); err != nil {
				return
			}
		}
	}()
	return r
}

func stopState(state any) {
	if s, ok := state.(Stopper); ok {
		s.Stop()
	}
}

type chunkReader struct {
	pr   *io.PipeReader
	done chan struct{}
}

func (r *chunkReader) Read(p []byte) (int, error) { return r.pr.Read(p) }

// Close fails pending and later writes so the feeding goroutine exits.
func (r *chunkReader) Close() error { return r.pr.Close() }
