package testpdf

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Canonical renders the root element of an XML document with sorted
// attributes. Whitespace-only text is dropped only between the children of
// element-only content, so documents that differ just in indentation compare
// equal while any change to leaf text, mixed content or xml:space="preserve"
// subtrees shows up.
func Canonical(data []byte) (string, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return "", err
	}
	if doc.Root() == nil {
		return "", nil
	}

	var b strings.Builder
	writeCanonical(&b, doc.Root(), false)
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, el *etree.Element, preserve bool) {
	switch el.SelectAttrValue("xml:space", "") {
	case "preserve":
		preserve = true
	case "default":
		preserve = false
	}

	b.WriteString("<" + el.FullTag())

	attrs := make([]string, 0, len(el.Attr))
	for _, a := range el.Attr {
		attrs = append(attrs, a.FullKey()+"="+a.Value)
	}
	sort.Strings(attrs)
	for _, a := range attrs {
		b.WriteString(" " + a)
	}
	b.WriteString(">")

	ignorable := !preserve && elementOnly(el)
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			writeCanonical(b, t, preserve)
		case *etree.CharData:
			if ignorable {
				continue
			}
			if t.IsCData() {
				b.WriteString("<![CDATA[" + t.Data + "]]>")
			} else {
				b.WriteString("[" + t.Data + "]")
			}
		case *etree.Comment:
			b.WriteString("<!--" + t.Data + "-->")
		}
	}

	b.WriteString("</" + el.FullTag() + ">")
}

func elementOnly(el *etree.Element) bool {
	markup := false
	for _, tok := range el.Child {
		cd, ok := tok.(*etree.CharData)
		if !ok {
			markup = true
			continue
		}
		if cd.IsCData() || strings.Trim(cd.Data, " \t\r\n") != "" {
			return false
		}
	}
	return markup
}
