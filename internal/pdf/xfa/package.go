// Package xfa locates and reads the XFA resource of a PDF's interactive form.
package xfa

import "bytes"

// WholeDocumentPacket names the single packet of an /XFA entry that is one stream
const WholeDocumentPacket = "xdp"

// Packet is one named part of an XFA package, for example template or datasets
type Packet struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Package is the decoded /XFA entry of an AcroForm in document order
type Package struct {
	Packets   []Packet `json:"packets"`
	PageCount int      `json:"page_count"`
}

// Bytes concatenates all packets into the complete XDP document
func (p *Package) Bytes() []byte {
	var buf bytes.Buffer
	for _, packet := range p.Packets {
		buf.Write(packet.Data)
	}
	return buf.Bytes()
}

// Names returns the packet names in document order
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.Packets))
	for _, packet := range p.Packets {
		names = append(names, packet.Name)
	}
	return names
}

// Packet returns the first packet called name
func (p *Package) Packet(name string) (Packet, bool) {
	for _, packet := range p.Packets {
		if packet.Name == name {
			return packet, true
		}
	}
	return Packet{}, false
}

// Size returns the total number of bytes across all packets
func (p *Package) Size() int {
	n := 0
	for _, packet := range p.Packets {
		n += len(packet.Data)
	}
	return n
}
