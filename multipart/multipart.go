package multipart

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kbukum/httpbridge/env"
	"github.com/kbukum/httpbridge/errors"
)

const (
	// DefaultSubtype is used when none is set.
	DefaultSubtype = "form-data"

	chunkSize = 32 << 10
)

type sourceKind int

const (
	sourceBytes sourceKind = iota
	sourceReader
	sourceFile
)

// Part is one entry of a multipart body.
type Part struct {
	Name     string
	Filename string
	// Headers are extra part headers. A Content-Type here overrides detection.
	Headers env.Headers

	kind   sourceKind
	data   []byte
	reader io.Reader
	path   string
}

// Descriptor is an ordered multipart body.
type Descriptor struct {
	subtype  string
	boundary string
	parts    []Part
}

// New creates an empty form-data descriptor.
func New() *Descriptor {
	return &Descriptor{subtype: DefaultSubtype}
}

// Kind identifies the descriptor as a multipart body.
func (d *Descriptor) Kind() env.BodyKind { return env.KindMultipart }

// WithSubtype sets the multipart subtype, e.g. "mixed" or "related".
func (d *Descriptor) WithSubtype(subtype string) *Descriptor {
	d.subtype = subtype
	return d
}

// WithBoundary fixes the boundary instead of generating a random one.
func (d *Descriptor) WithBoundary(boundary string) *Descriptor {
	d.boundary = boundary
	return d
}

// AddField appends a plain text field.
func (d *Descriptor) AddField(name, value string) *Descriptor {
	d.parts = append(d.parts, Part{Name: name, kind: sourceBytes, data: []byte(value)})
	return d
}

// AddBytes appends a file part held in memory.
func (d *Descriptor) AddBytes(name, filename string, data []byte, headers ...env.Header) *Descriptor {
	d.parts = append(d.parts, Part{Name: name, Filename: filename, Headers: headers, kind: sourceBytes, data: data})
	return d
}

// AddReader appends a part read lazily from r. The reader is consumed once.
func (d *Descriptor) AddReader(name, filename string, r io.Reader, headers ...env.Header) *Descriptor {
	d.parts = append(d.parts, Part{Name: name, Filename: filename, Headers: headers, kind: sourceReader, reader: r})
	return d
}

// AddFile appends a part read from the file at path when the body is sent.
// The filename defaults to the base name of path.
func (d *Descriptor) AddFile(name, path string, headers ...env.Header) *Descriptor {
	d.parts = append(d.parts, Part{
		Name: name, Filename: filepath.Base(path), Headers: headers, kind: sourceFile, path: path,
	})
	return d
}

// Parts returns the parts in order.
func (d *Descriptor) Parts() []Part { return d.parts }

// Encode validates the descriptor and returns the content-type header with
// the boundary plus a producer of the serialized body.
func (d *Descriptor) Encode() (env.Headers, env.Producer, error) {
	if len(d.parts) == 0 {
		return nil, nil, errors.InvalidInput("multipart", "descriptor has no parts")
	}
	boundary := d.boundary
	if boundary == "" {
		boundary = randomBoundary()
	}
	// SetBoundary enforces RFC 2046 limits.
	if err := multipart.NewWriter(io.Discard).SetBoundary(boundary); err != nil {
		return nil, nil, errors.InvalidInput("multipart", "invalid boundary").WithCause(err)
	}

	headers := make([]textproto.MIMEHeader, len(d.parts))
	for i, p := range d.parts {
		h, err := d.partHeader(p)
		if err != nil {
			return nil, nil, err
		}
		headers[i] = h
	}

	subtype := d.subtype
	if subtype == "" {
		subtype = DefaultSubtype
	}
	contentType := mime.FormatMediaType("multipart/"+subtype, map[string]string{"boundary": boundary})
	return env.Headers{{Key: "content-type", Value: contentType}}, d.producer(boundary, headers), nil
}

// partHeader builds the MIME header of a part and checks its source.
func (d *Descriptor) partHeader(p Part) (textproto.MIMEHeader, error) {
	if p.Name == "" && d.subtype == DefaultSubtype {
		return nil, errors.InvalidInput("multipart", "form-data part without a name")
	}
	h := make(textproto.MIMEHeader)
	for _, hd := range p.Headers {
		h.Add(hd.Key, hd.Value)
	}
	if h.Get("Content-Disposition") == "" && p.Name != "" {
		params := map[string]string{"name": p.Name}
		if p.Filename != "" {
			params["filename"] = p.Filename
		}
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", params))
	}
	if h.Get("Content-Type") != "" {
		return h, nil
	}

	switch p.kind {
	case sourceFile:
		m, err := mimetype.DetectFile(p.path)
		if err != nil {
			return nil, errors.InvalidInput("multipart", fmt.Sprintf("part %q: cannot read %s", p.Name, p.path)).WithCause(err)
		}
		h.Set("Content-Type", m.String())
	case sourceBytes:
		if p.Filename != "" {
			h.Set("Content-Type", mimetype.Detect(p.data).String())
		}
	case sourceReader:
		if p.reader == nil {
			return nil, errors.InvalidInput("multipart", fmt.Sprintf("part %q has a nil reader", p.Name))
		}
		h.Set("Content-Type", "application/octet-stream")
	}
	return h, nil
}

// producer serializes the parts, yielding each write of the multipart
// writer as a chunk.
func (d *Descriptor) producer(boundary string, headers []textproto.MIMEHeader) env.Producer {
	parts := d.parts
	return func(yield func([]byte, error) bool) {
		w := &yieldWriter{yield: yield}
		mw := multipart.NewWriter(w)
		_ = mw.SetBoundary(boundary)

		for i, p := range parts {
			pw, err := mw.CreatePart(headers[i])
			if err != nil {
				w.fail(err)
				return
			}
			if err := writeSource(pw, p); err != nil {
				w.fail(err)
				return
			}
		}
		if err := mw.Close(); err != nil {
			w.fail(err)
		}
	}
}

func writeSource(w io.Writer, p Part) error {
	switch p.kind {
	case sourceBytes:
		_, err := w.Write(p.data)
		return err
	case sourceReader:
		_, err := io.CopyBuffer(w, p.reader, make([]byte, chunkSize))
		return err
	case sourceFile:
		f, err := os.Open(p.path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.CopyBuffer(w, f, make([]byte, chunkSize))
		return err
	}
	return nil
}

// yieldWriter turns writes into producer chunks.
type yieldWriter struct {
	yield   func([]byte, error) bool
	stopped bool
}

func (w *yieldWriter) Write(p []byte) (int, error) {
	if w.stopped {
		return 0, errStopped
	}
	if len(p) == 0 {
		return 0, nil
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	if !w.yield(chunk, nil) {
		w.stopped = true
		return 0, errStopped
	}
	return len(p), nil
}

// fail reports err to the consumer unless it already stopped.
func (w *yieldWriter) fail(err error) {
	if w.stopped || err == errStopped {
		return
	}
	w.stopped = true
	w.yield(nil, err)
}

var errStopped = fmt.Errorf("multipart: consumer stopped")

func randomBoundary() string {
	var buf [24]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
