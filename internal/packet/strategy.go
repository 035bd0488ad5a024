package packet

import (
	"encoding/json"
	"fmt"
)

// Strategy packs or parses one part of a packet in place. The dispatching
// pipeline owns part slicing and length bookkeeping; a strategy only
// transforms the part's contents.
type Strategy struct {
	Pack  func(p *Packet)
	Parse func(p *Packet)
}

// nop is the universal nada strategy: empty output, nothing to check.
func nop() Strategy {
	return Strategy{
		Pack:  func(*Packet) {},
		Parse: func(*Packet) {},
	}
}

// notImplemented registers a declared kind that this build does not
// support. Both directions take the unrecognized-kind failure path.
func notImplemented(s Stage, kind string) Strategy {
	reason := fmt.Sprintf("Unrecognizible packet %s: kind %q not implemented.", s, kind)
	fn := func(p *Packet) { p.failPart(s, reason) }
	return Strategy{Pack: fn, Parse: fn}
}

func builtinNeckStrategies() map[NeckKind]Strategy {
	return map[NeckKind]Strategy{
		NeckNada:   nop(),
		NeckSodium: notImplemented(StageNeck, "sodium"),
		NeckSHA2:   notImplemented(StageNeck, "sha2"),
		NeckCRC64:  notImplemented(StageNeck, "crc64"),
	}
}

func builtinBodyStrategies() map[BodyKind]Strategy {
	return map[BodyKind]Strategy{
		BodyJSON:   {Pack: packBodyJSON, Parse: parseBodyJSON},
		BodyNada:   notImplemented(StageBody, "nada"),
		BodyBinary: notImplemented(StageBody, "binary"),
	}
}

func builtinTailStrategies() map[TailKind]Strategy {
	return map[TailKind]Strategy{
		TailNada:  nop(),
		TailCRC16: notImplemented(StageTail, "crc16"),
		TailCRC64: notImplemented(StageTail, "crc64"),
	}
}

// packBodyJSON serializes the body's raw scalar if present, its structured
// data otherwise, compactly.
func packBodyJSON(p *Packet) {
	var kit any
	switch {
	case p.Body.Raw != nil:
		kit = p.Body.Raw
	case p.Body.Data != nil:
		kit = p.Body.Data
	default:
		kit = map[string]any{}
	}
	packed, err := json.Marshal(kit)
	if err != nil {
		p.failPart(StageBody, errBodyUnrecognizible)
		return
	}
	p.Body.Pack = packed
}

// parseBodyJSON deserializes the already-sliced body bytes. A mapping
// lands in Data, anything else in Raw.
func parseBodyJSON(p *Packet) {
	if p.Meta.BodyLen == 0 {
		return
	}
	var kit any
	if err := json.Unmarshal(p.Body.Pack, &kit); err != nil {
		p.failPart(StageBody, errBodyUnrecognizible)
		return
	}
	if m, ok := kit.(map[string]any); ok {
		p.Body.Data = m
		return
	}
	p.Body.Raw = kit
}
