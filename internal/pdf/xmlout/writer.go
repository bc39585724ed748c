// Package xmlout re-serializes XFA XML with a UTF-8 declaration and indentation.
package xmlout

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	pdferrors "github.com/a3tai/pdf2xfa2/internal/pdf/errors"
)

const (
	// DefaultIndent is the number of spaces per nesting level
	DefaultIndent = 4

	declarationTarget = "xml"
	declaration       = `version="1.0" encoding="UTF-8"`
)

// Writer parses XFA bytes into a tree and writes it back out
type Writer struct {
	indent int
}

// NewWriter creates a Writer indenting by the given number of spaces.
// An indent of 0 keeps the document's own whitespace.
func NewWriter(indent int) *Writer {
	if indent < 0 {
		indent = 0
	}
	return &Writer{indent: indent}
}

// Parse reads data into an XML tree. Byte order marks are honoured and
// non UTF-8 declared encodings are decoded.
func (w *Writer) Parse(data []byte) (*etree.Document, error) {
	utf8Data, err := normalize(data)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeSerialize, "failed to decode XFA text", err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	doc.ReadSettings.CharsetReader = charsetReader

	if err := doc.ReadFromBytes(utf8Data); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeSerialize, "failed to parse XFA XML", err)
	}

	if doc.Root() == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeSerialize, "XFA XML has no root element")
	}

	return doc, nil
}

// Write serializes doc to out with a UTF-8 declaration
func (w *Writer) Write(out io.Writer, doc *etree.Document) (int64, error) {
	setDeclaration(doc)

	if w.indent > 0 {
		indentDocument(doc, strings.Repeat(" ", w.indent))
	}
	ensureTrailingNewline(doc)

	n, err := doc.WriteTo(out)
	if err != nil {
		return n, pdferrors.WrapError(pdferrors.ErrorTypeOutput, "failed to write XML", err)
	}

	return n, nil
}

// Transform parses data and writes the formatted result to out
func (w *Writer) Transform(out io.Writer, data []byte) (int64, error) {
	doc, err := w.Parse(data)
	if err != nil {
		return 0, err
	}
	return w.Write(out, doc)
}

// Format returns the formatted document as bytes
func (w *Writer) Format(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.Transform(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setDeclaration replaces or adds the XML declaration, since the text is
// always written as UTF-8 whatever encoding it was read in.
func setDeclaration(doc *etree.Document) {
	for i, tok := range doc.Child {
		if p, ok := tok.(*etree.ProcInst); ok && p.Target == declarationTarget {
			doc.RemoveChildAt(i)
			doc.InsertChildAt(i, etree.NewProcInst(declarationTarget, declaration))
			return
		}
	}

	doc.InsertChildAt(0, etree.NewProcInst(declarationTarget, declaration))
	doc.InsertChildAt(1, etree.NewText("\n"))
}

// indentDocument puts every top-level token on its own line and indents
// element-only content below it. Whitespace that is part of the document's
// text is never touched: leaf elements, mixed content, CDATA sections and
// xml:space="preserve" subtrees are written as they were read.
func indentDocument(doc *etree.Document, unit string) {
	for _, tok := range detachChildren(&doc.Element) {
		if isWhitespace(tok) {
			continue
		}
		if len(doc.Child) > 0 {
			doc.AddChild(etree.NewText("\n"))
		}
		doc.AddChild(tok)
		if el, ok := tok.(*etree.Element); ok {
			indentElement(el, 1, unit)
		}
	}
}

func indentElement(el *etree.Element, depth int, unit string) {
	if !elementOnly(el) {
		return
	}

	prefix := "\n" + strings.Repeat(unit, depth)
	for _, tok := range detachChildren(el) {
		if isWhitespace(tok) {
			continue
		}
		el.AddChild(etree.NewText(prefix))
		el.AddChild(tok)
		if child, ok := tok.(*etree.Element); ok {
			indentElement(child, depth+1, unit)
		}
	}
	el.AddChild(etree.NewText("\n" + strings.Repeat(unit, depth-1)))
}

// elementOnly reports whether the text children of el are all insignificant
// whitespace between markup, so that re-indenting el preserves its content.
func elementOnly(el *etree.Element) bool {
	if el.SelectAttrValue("xml:space", "") == "preserve" {
		return false
	}

	markup := false
	for _, tok := range el.Child {
		cd, ok := tok.(*etree.CharData)
		if !ok {
			markup = true
			continue
		}
		if cd.IsCData() || !isBlank(cd.Data) {
			return false
		}
	}
	return markup
}

// detachChildren removes and returns all children of el
func detachChildren(el *etree.Element) []etree.Token {
	children := append([]etree.Token(nil), el.Child...)
	for i := len(el.Child) - 1; i >= 0; i-- {
		el.RemoveChildAt(i)
	}
	return children
}

func isWhitespace(tok etree.Token) bool {
	cd, ok := tok.(*etree.CharData)
	return ok && !cd.IsCData() && isBlank(cd.Data)
}

func isBlank(s string) bool {
	return strings.Trim(s, " \t\r\n") == ""
}

// ensureTrailingNewline terminates the document with a newline
func ensureTrailingNewline(doc *etree.Document) {
	if n := len(doc.Child); n > 0 {
		if cd, ok := doc.Child[n-1].(*etree.CharData); ok && strings.HasSuffix(cd.Data, "\n") {
			return
		}
	}
	doc.AddChild(etree.NewText("\n"))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 byte order mark and converts UTF-16 text that
// starts with a byte order mark to UTF-8. Anything else is left untouched
// for the declared encoding to apply.
func normalize(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return data[len(utf8BOM):], nil
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}), bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		out, _, err := transform.Bytes(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), data)
		return out, err
	}
	return data, nil
}

// charsetReader decodes documents declaring a non UTF-8 encoding. Input has
// already been normalized to UTF-8 when it carried a UTF-16 byte order mark.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "utf-16", "utf-16be", "utf-16le":
		return input, nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}

	return enc.NewDecoder().Reader(input), nil
}
