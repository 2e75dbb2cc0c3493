package schemastream

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

const readerBufferSize = 64 * 1024

var (
	errNilReader = errors.New("nil XML reader")

	// ErrLimit is wrapped by errors returned when a document exceeds a
	// configured limit.
	ErrLimit = errors.New("xml limit exceeded")
)

// EventKind identifies the type of a streamed event.
type EventKind uint8

const (
	// EventStartElement is an element start tag (or an empty element).
	EventStartElement EventKind = iota + 1
	// EventEndElement is an element end tag.
	EventEndElement
	// EventCharData is character data, including CDATA sections.
	EventCharData
)

func (k EventKind) String() string {
	switch k {
	case EventStartElement:
		return "start"
	case EventEndElement:
		return "end"
	case EventCharData:
		return "chardata"
	default:
		return "unknown"
	}
}

// Attr is an attribute by local name.
type Attr struct {
	Name  string
	Value string
}

// Event is one streamed event. Line and Column locate where the event's
// token starts.
type Event struct {
	Name   string
	Text   string
	Attrs  []Attr
	Kind   EventKind
	Line   int
	Column int
}

// Reader streams events from an XML document.
type Reader struct {
	dec     *xml.Decoder
	peeked  xml.Token
	opts    options
	depth   int
	peekPos [2]int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	if r == nil {
		return nil, errNilReader
	}
	dec := xml.NewDecoder(bufio.NewReaderSize(r, readerBufferSize))
	dec.Strict = true
	return &Reader{dec: dec, opts: buildOptions(opts...)}, nil
}

// Next returns the next event, or io.EOF once the document is exhausted.
func (r *Reader) Next() (Event, error) {
	if r == nil || r.dec == nil {
		return Event{}, errNilReader
	}
	for {
		tok, line, col, err := r.token()
		if err != nil {
			return Event{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return r.start(t, line, col)
		case xml.EndElement:
			r.depth--
			return Event{Kind: EventEndElement, Name: t.Name.Local, Line: line, Column: col}, nil
		case xml.CharData:
			return r.charData(t, line, col)
		default:
			// comments, processing instructions and directives
		}
	}
}

func (r *Reader) start(t xml.StartElement, line, col int) (Event, error) {
	r.depth++
	if r.depth > r.opts.maxDepth {
		return Event{}, fmt.Errorf("%w: element %s at line %d exceeds max depth %d", ErrLimit, t.Name.Local, line, r.opts.maxDepth)
	}
	if len(t.Attr) > r.opts.maxAttrs {
		return Event{}, fmt.Errorf("%w: element %s at line %d has %d attributes, max %d", ErrLimit, t.Name.Local, line, len(t.Attr), r.opts.maxAttrs)
	}
	attrs := make([]Attr, 0, len(t.Attr))
	for _, a := range t.Attr {
		if isNamespaceDecl(a.Name) {
			continue
		}
		if len(a.Value) > r.opts.maxTokenSize {
			return Event{}, fmt.Errorf("%w: attribute %s at line %d exceeds max token size %d", ErrLimit, a.Name.Local, line, r.opts.maxTokenSize)
		}
		attrs = append(attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}
	return Event{Kind: EventStartElement, Name: t.Name.Local, Attrs: attrs, Line: line, Column: col}, nil
}

func (r *Reader) charData(first xml.CharData, line, col int) (Event, error) {
	buf := append([]byte(nil), first...)
	for {
		tok, nextLine, nextCol, err := r.token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Event{}, err
		}
		more, ok := tok.(xml.CharData)
		if !ok {
			r.peeked = tok
			r.peekPos = [2]int{nextLine, nextCol}
			break
		}
		buf = append(buf, more...)
		if len(buf) > r.opts.maxTokenSize {
			break
		}
	}
	if len(buf) > r.opts.maxTokenSize {
		return Event{}, fmt.Errorf("%w: character data at line %d exceeds max token size %d", ErrLimit, line, r.opts.maxTokenSize)
	}
	return Event{Kind: EventCharData, Text: string(buf), Line: line, Column: col}, nil
}

// token returns the next token and the position where it starts.
func (r *Reader) token() (xml.Token, int, int, error) {
	if r.peeked != nil {
		tok := r.peeked
		r.peeked = nil
		return tok, r.peekPos[0], r.peekPos[1], nil
	}
	line, col := r.dec.InputPos()
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, 0, io.EOF
		}
		return nil, 0, 0, fmt.Errorf("parse xml: %w", err)
	}
	return xml.CopyToken(tok), line, col, nil
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}
