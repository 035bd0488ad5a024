package packet

import (
	"fmt"
	"strconv"
)

const (
	// MaxHeadLen bounds the serialized header; the length field is a
	// 2-hex-digit string, so 255 is a hard wire limit.
	MaxHeadLen = 255

	// headEnd terminates a JSON header on the wire.
	headEnd = "\r\n\r\n"
)

// Pack serializes p into its wire form: body and tail first (the header
// carries their lengths), then the header including the length patch, then
// the neck (which signs the finalized header bytes), concatenated as
// head ‖ neck ‖ body ‖ tail into p.Raw.
//
// Part-level failures are recorded on the packet and packing continues
// best-effort. A header failure is terminal: nil is returned, p.Raw is left
// untouched and the packet must not be sent.
func (c *Codec) Pack(p *Packet) []byte {
	c.packBody(p)
	c.packTail(p)
	if !c.packHead(p) {
		return nil
	}
	c.packNeck(p)

	raw := make([]byte, 0, len(p.Head.Pack)+len(p.Neck.Pack)+len(p.Body.Pack)+len(p.Tail.Pack))
	raw = append(raw, p.Head.Pack...)
	raw = append(raw, p.Neck.Pack...)
	raw = append(raw, p.Body.Pack...)
	raw = append(raw, p.Tail.Pack...)
	p.Raw = raw
	return raw
}

func (c *Codec) packBody(p *Packet) {
	p.beginStage()
	p.Body.Pack = nil
	if s, ok := c.body[p.Meta.BodyKind]; ok {
		s.Pack(p)
	} else {
		p.failPart(StageBody, errBodyUnrecognizible)
	}
	p.Meta.BodyLen = len(p.Body.Pack)
}

func (c *Codec) packTail(p *Packet) {
	p.beginStage()
	p.Tail.Pack = nil
	if s, ok := c.tail[p.Meta.TailKind]; ok {
		s.Pack(p)
	} else {
		p.failPart(StageTail, errTailUnrecognizible)
	}
	p.Meta.TailLen = len(p.Tail.Pack)
}

// packHead serializes the emitted field set: mandatory fields always, the
// rest only when they differ from their default. Reports whether the
// header was finalized.
func (c *Codec) packHead(p *Packet) bool {
	p.beginStage()
	h, m := &p.Head, &p.Meta
	h.Pack = nil

	// Sync point: the head's per-part copies are derived from meta, written
	// once, never read back except for serialization below.
	h.NeckKind, h.NeckLen = m.NeckKind, m.NeckLen
	h.BodyKind, h.BodyLen = m.BodyKind, m.BodyLen
	h.TailKind, h.TailLen = m.TailKind, m.TailLen
	m.HeadKind = h.Kind

	if h.Kind != HeadJSON {
		m.HeadLen = 0
		p.fault(StageHead, errHeadUnrecognizible)
		return false
	}

	buf := make([]byte, 0, MaxHeadLen)
	buf = append(buf, `{"hk":`...)
	buf = strconv.AppendInt(buf, int64(h.Kind), 10)
	buf = append(buf, `,"hl":"`...)
	hlOff := len(buf) // fixed-width placeholder, patched in place below
	buf = append(buf, `00"`...)
	for _, f := range headFields[1:] { // hk already written
		v := f.get(h)
		if !f.mandatory && v == f.def {
			continue
		}
		buf = append(buf, ',', '"')
		buf = append(buf, f.tag...)
		buf = append(buf, '"', ':')
		buf = strconv.AppendInt(buf, v, 10)
	}
	buf = append(buf, '}')
	buf = append(buf, headEnd...)

	hl := len(buf)
	if hl > MaxHeadLen {
		p.fault(StageHead, fmt.Sprintf("Head length of %d, exceeds max of %d", hl, MaxHeadLen))
		m.HeadLen = 0
		return false
	}

	const hexDigits = "0123456789abcdef"
	buf[hlOff] = hexDigits[(hl>>4)&0xf]
	buf[hlOff+1] = hexDigits[hl&0xf]

	h.Len = hl
	m.HeadLen = hl
	h.Pack = buf
	return true
}

// packNeck signs the finalized header bytes. Runs last so the signature
// covers the patched length field.
func (c *Codec) packNeck(p *Packet) {
	p.beginStage()
	p.Neck.Pack = nil
	if s, ok := c.neck[p.Meta.NeckKind]; ok {
		s.Pack(p)
	} else {
		p.failPart(StageNeck, errNeckUnrecognizible)
	}
	p.Meta.NeckLen = len(p.Neck.Pack)
}
