package packet

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// headStart is the fixed leading marker of a JSON header.
var headStart = []byte(`{"hk":0,`)

// Parse consumes p.Raw part by part: head, neck, vouch checkpoint, body,
// tail, verify checkpoint. Each step slices its declared prefix off the
// buffer and leaves the remainder for the next.
//
// The remainder is returned with ok=true; it is normally empty, and
// non-empty only when trailing bytes belong to a subsequent packet or the
// framing is corrupt; the caller decides either way. ok=false means the
// packet is unusable: unrecognizable header framing, or rejection by the
// vouch/verify checkpoint; body and tail are never inspected past a vouch
// rejection.
//
// Part-level failures short of that are recorded on the packet and parsing
// continues best-effort.
func (c *Codec) Parse(p *Packet) (rest []byte, ok bool) {
	p.Meta.FillDefaults(c.Defaults)

	rest, ok = c.parseHead(p, p.Raw)
	if !ok {
		return nil, false
	}
	rest = c.parseNeck(p, rest)

	p.beginStage()
	if !c.VouchHead(&p.Meta, &p.Head, &p.Neck) {
		reason := p.Meta.Err
		if reason == "" {
			reason = errVouchRejected
		}
		p.fault(StageVouch, reason)
		return nil, false
	}

	rest = c.parseBody(p, rest)
	rest = c.parseTail(p, rest)

	p.beginStage()
	if !c.VerifyBody(&p.Meta, &p.Body, &p.Tail) {
		reason := p.Meta.Err
		if reason == "" {
			reason = errVerifyRejected
		}
		p.fault(StageVerify, reason)
		return nil, false
	}

	return rest, true
}

// parseHead recognizes the header by its leading marker and end marker,
// decodes the emitted field set over the head defaults, and checks the
// patched length and declared kind against what was actually consumed.
// Either mismatch is recorded but does not stop the pipeline; a buffer
// with no recognizable header cannot be framed at all and stops here.
func (c *Codec) parseHead(p *Packet, pack []byte) ([]byte, bool) {
	p.beginStage()
	h, m := &p.Head, &p.Meta

	end := bytes.Index(pack, []byte(headEnd))
	if !bytes.HasPrefix(pack, headStart) || end < 0 {
		m.HeadLen = 0
		m.HeadKind = HeadUnknown
		p.fault(StageHead, errHeadUnrecognizible)
		return nil, false
	}
	m.HeadKind = HeadJSON

	front := pack[:end]
	h.Pack = append([]byte(nil), pack[:end+len(headEnd)]...)
	rest := pack[end+len(headEnd):]
	m.HeadLen = len(h.Pack)

	h.applyDefaults()

	dec := json.NewDecoder(bytes.NewReader(front))
	dec.UseNumber()
	var kit map[string]any
	if err := dec.Decode(&kit); err != nil {
		m.HeadLen = 0
		m.HeadKind = HeadUnknown
		p.fault(StageHead, errHeadUnrecognizible)
		return nil, false
	}
	for _, f := range headFields {
		if raw, present := kit[f.tag]; present {
			f.set(h, asInt64(raw))
		}
	}
	if raw, present := kit["hl"]; present {
		if s, isStr := raw.(string); isStr {
			if hl, err := strconv.ParseInt(s, 16, 32); err == nil {
				h.Len = int(hl)
			}
		}
	}

	if h.Len != m.HeadLen {
		p.fault(StageHead, errHeadLenMismatch)
	}
	if h.Kind != m.HeadKind {
		p.fault(StageHead, errHeadKindMismatch)
	}

	// Sync point: meta's working copies mirror the just-parsed header.
	m.NeckKind, m.NeckLen = h.NeckKind, h.NeckLen
	m.BodyKind, m.BodyLen = h.BodyKind, h.BodyLen
	m.TailKind, m.TailLen = h.TailKind, h.TailLen

	return rest, true
}

func (c *Codec) parseNeck(p *Packet, pack []byte) []byte {
	p.beginStage()
	p.Neck.Pack, pack = slicePart(pack, p.Meta.NeckLen)
	if s, ok := c.neck[p.Meta.NeckKind]; ok {
		s.Parse(p)
	} else {
		p.failPart(StageNeck, errNeckUnrecognizible)
	}
	return pack
}

func (c *Codec) parseBody(p *Packet, pack []byte) []byte {
	p.beginStage()
	p.Body.Data = nil
	p.Body.Raw = nil
	p.Body.Pack, pack = slicePart(pack, p.Meta.BodyLen)
	if s, ok := c.body[p.Meta.BodyKind]; ok {
		s.Parse(p)
	} else {
		p.failPart(StageBody, errBodyUnrecognizible)
	}
	return pack
}

func (c *Codec) parseTail(p *Packet, pack []byte) []byte {
	p.beginStage()
	p.Tail.Pack, pack = slicePart(pack, p.Meta.TailLen)
	if s, ok := c.tail[p.Meta.TailKind]; ok {
		s.Parse(p)
	} else {
		p.failPart(StageTail, errTailUnrecognizible)
	}
	return pack
}

// slicePart cuts n bytes off the front, clamped to what is actually there.
func slicePart(pack []byte, n int) (part, rest []byte) {
	if n < 0 {
		n = 0
	}
	if n > len(pack) {
		n = len(pack)
	}
	return append([]byte(nil), pack[:n]...), pack[n:]
}

// asInt64 reads a decoded JSON header value as an integer; anything else
// (fractions, strings, nulls) counts as zero, matching a field that was
// never emitted.
func asInt64(v any) int64 {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		return 0
	}
	return i
}
