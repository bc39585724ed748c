// Package testpdf builds small, structurally valid PDF files carrying XFA forms
// for use in tests.
package testpdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
)

// Builder assembles numbered PDF objects and writes them with a matching xref table
type Builder struct {
	objects []string
}

// NewBuilder returns an empty Builder; the first object added is object 1
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an object body and returns its object number
func (b *Builder) Add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// Set replaces the body of an already added object
func (b *Builder) Set(num int, body string) {
	b.objects[num-1] = body
}

// AddStream appends a stream object. When compress is set the data is
// FlateDecode encoded.
func (b *Builder) AddStream(data []byte, compress bool) int {
	filter := ""
	if compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		_, _ = zw.Write(data)
		_ = zw.Close()
		data = buf.Bytes()
		filter = " /Filter /FlateDecode"
	}
	return b.Add(fmt.Sprintf("<< /Length %d%s >>\nstream\n%s\nendstream", len(data), filter, data))
}

// Bytes serializes the document with root as the catalog object number
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objects)+1, root, xref)

	return buf.Bytes()
}

// Packet is one named part of an XFA package
type Packet struct {
	Name string
	Data string
}

// Options control the shape of a generated form document
type Options struct {
	Compress     bool
	OmitAcroForm bool
	OmitXFA      bool
}

// skeleton adds catalog, page tree, one page and an AcroForm placeholder and
// returns the catalog and AcroForm object numbers.
func skeleton(b *Builder, opts Options) (catalog, acroForm int) {
	catalog = b.Add("")
	pages := b.Add("")
	page := b.Add("")

	b.Set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", page))
	b.Set(page, fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] >>", pages))

	if opts.OmitAcroForm {
		b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
		return catalog, 0
	}

	acroForm = b.Add("<< /Fields [] >>")
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm %d 0 R >>", pages, acroForm))
	return catalog, acroForm
}

// SingleStream returns a PDF whose /XFA entry is one stream holding xml
func SingleStream(xml string, opts Options) []byte {
	b := NewBuilder()
	catalog, acroForm := skeleton(b, opts)
	if acroForm != 0 && !opts.OmitXFA {
		stream := b.AddStream([]byte(xml), opts.Compress)
		b.Set(acroForm, fmt.Sprintf("<< /Fields [] /XFA %d 0 R >>", stream))
	}
	return b.Bytes(catalog)
}

// PacketArray returns a PDF whose /XFA entry is an array of packet name and stream pairs
func PacketArray(packets []Packet, opts Options) []byte {
	b := NewBuilder()
	catalog, acroForm := skeleton(b, opts)
	if acroForm != 0 && !opts.OmitXFA {
		entries := make([]string, 0, len(packets))
		for _, p := range packets {
			stream := b.AddStream([]byte(p.Data), opts.Compress)
			entries = append(entries, fmt.Sprintf("(%s) %d 0 R", p.Name, stream))
		}
		b.Set(acroForm, fmt.Sprintf("<< /Fields [] /XFA [%s] >>", strings.Join(entries, " ")))
	}
	return b.Bytes(catalog)
}

// SampleXDP is a small complete XDP document
const SampleXDP = `<?xml version="1.0" encoding="UTF-8"?>
<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/" uuid="b2a1"><template xmlns="http://www.xfa.org/schema/xfa-template/3.3/"><subform name="form1" layout="tb"><field name="FirstName"><ui><textEdit/></ui></field><field name="Amount" w="30mm"><value><decimal/></value></field></subform></template><xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/"><xfa:data><form1><FirstName>Ada &amp; Co</FirstName><Amount>12.50</Amount></form1></xfa:data></xfa:datasets></xdp:xdp>`

// SamplePackets splits SampleXDP the way form producers lay out a packet array
func SamplePackets() []Packet {
	return []Packet{
		{Name: "preamble", Data: `<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/" uuid="b2a1">`},
		{Name: "template", Data: `<template xmlns="http://www.xfa.org/schema/xfa-template/3.3/"><subform name="form1" layout="tb"><field name="FirstName"><ui><textEdit/></ui></field><field name="Amount" w="30mm"><value><decimal/></value></field></subform></template>`},
		{Name: "datasets", Data: `<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/"><xfa:data><form1><FirstName>Ada &amp; Co</FirstName><Amount>12.50</Amount></form1></xfa:data></xfa:datasets>`},
		{Name: "postamble", Data: `</xdp:xdp>`},
	}
}
