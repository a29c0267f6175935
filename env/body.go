package env

import (
	"io"
	"iter"
)

// BodyKind names a body variant.
type BodyKind string

const (
	KindRaw       BodyKind = "raw"
	KindStream    BodyKind = "stream"
	KindProducer  BodyKind = "producer"
	KindMultipart BodyKind = "multipart"
)

// Body is a request body. The variants are Raw, Stream, Producer and any
// MultipartBody.
type Body interface {
	Kind() BodyKind
}

// Raw is a body held in memory.
type Raw []byte

func (Raw) Kind() BodyKind { return KindRaw }

// Stream is a body read lazily from Reader.
type Stream struct {
	Reader io.Reader
}

func (Stream) Kind() BodyKind { return KindStream }

// Producer yields successive body chunks. A non-nil error ends the body
// and fails the request.
type Producer iter.Seq2[[]byte, error]

func (Producer) Kind() BodyKind { return KindProducer }

// ProducerOf returns a producer yielding the given chunks in order.
func ProducerOf(chunks ...[]byte) Producer {
	return func(yield func([]byte, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// MultipartBody is a structured multipart body. Encode returns the headers
// to merge into the request (content-type with boundary) and a producer for
// the serialized parts.
type MultipartBody interface {
	Body
	Encode() (Headers, Producer, error)
}
