package adapter

import (
	"fmt"
	"io"
	"iter"

	"github.com/kbukum/httpbridge/env"
)

// pullState is a producer converted to a pull iterator.
type pullState struct {
	next func() ([]byte, error, bool)
	stop func()
}

// Stop releases the producer.
func (s *pullState) Stop() { s.stop() }

// NextChunk advances a producer body. The first call receives the producer
// itself and converts it to a pull iterator; later calls receive the state
// returned by the previous call. io.EOF marks the end of the body. Empty
// chunks are skipped.
func NextChunk(state any) ([]byte, any, error) {
	var s *pullState
	switch st := state.(type) {
	case *pullState:
		s = st
	case env.Producer:
		s = pull(iter.Seq2[[]byte, error](st))
	case iter.Seq2[[]byte, error]:
		s = pull(st)
	default:
		return nil, state, fmt.Errorf("adapter: unexpected chunk state %T", state)
	}

	for {
		chunk, err, ok := s.next()
		if !ok {
			s.stop()
			return nil, s, io.EOF
		}
		if err != nil {
			s.stop()
			return nil, s, err
		}
		if len(chunk) > 0 {
			return chunk, s, nil
		}
	}
}

func pull(seq iter.Seq2[[]byte, error]) *pullState {
	next, stop := iter.Pull2(seq)
	return &pullState{next: next, stop: stop}
}

// streamProducer reads r in chunks of streamChunkSize.
func streamProducer(r io.Reader) env.Producer {
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, streamChunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				if !yield(chunk, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}
