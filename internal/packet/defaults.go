package packet

const (
	// DefaultPort is the protocol's fixed default UDP port.
	DefaultPort = 7530
	// DefaultDstHost is the loopback destination assumed when unset.
	DefaultDstHost = "127.0.0.1"
)

// MetaDefaults supplies the transport-owned meta defaults. Host and port
// values come from the transport layer; everything else in the meta table
// defaults to zero.
type MetaDefaults struct {
	SrcHost string
	SrcPort int
	DstHost string
	DstPort int
}

// BuiltinMetaDefaults returns the protocol's own meta default table.
func BuiltinMetaDefaults() MetaDefaults {
	return MetaDefaults{
		SrcHost: "",
		SrcPort: DefaultPort,
		DstHost: DefaultDstHost,
		DstPort: DefaultPort,
	}
}

// FillDefaults sets any unset meta field to its default without touching
// fields the caller already set. Idempotent and order-independent.
func (m *Meta) FillDefaults(d MetaDefaults) {
	if m.SrcHost == "" {
		m.SrcHost = d.SrcHost
	}
	if m.SrcPort == 0 {
		m.SrcPort = d.SrcPort
	}
	if m.DstHost == "" {
		m.DstHost = d.DstHost
	}
	if m.DstPort == 0 {
		m.DstPort = d.DstPort
	}
	// vn, hk/hl, nk/nl, bk/bl, tk/tl all default to zero values; hk and hl
	// are mandatory and owned by the head pipeline.
}

// headField describes one wire-visible header field: its two-character
// tag, whether it is always emitted, its default, and how to read and
// write it on a Head. The slice order is the wire emission order.
//
// "hl" is deliberately absent: the packer inserts it right after "hk" as a
// fixed-width placeholder and patches it once the true length is known.
type headField struct {
	tag       string
	mandatory bool
	def       int64
	get       func(*Head) int64
	set       func(*Head, int64)
}

var headFields = []headField{
	{"hk", true, 0,
		func(h *Head) int64 { return int64(h.Kind) },
		func(h *Head, v int64) { h.Kind = HeadKind(v) }},
	{"vn", false, 0,
		func(h *Head) int64 { return h.Version },
		func(h *Head, v int64) { h.Version = v }},
	{"sd", true, 0,
		func(h *Head) int64 { return h.SrcDevice },
		func(h *Head, v int64) { h.SrcDevice = v }},
	{"dd", true, 0,
		func(h *Head) int64 { return h.DstDevice },
		func(h *Head, v int64) { h.DstDevice = v }},
	{"cf", false, 0,
		func(h *Head) int64 { return h.Corresponder },
		func(h *Head, v int64) { h.Corresponder = v }},
	{"mf", false, 0,
		func(h *Head) int64 { return h.Multicast },
		func(h *Head, v int64) { h.Multicast = v }},
	{"si", false, 0,
		func(h *Head) int64 { return h.Session },
		func(h *Head, v int64) { h.Session = v }},
	{"ti", false, 0,
		func(h *Head) int64 { return h.Transaction },
		func(h *Head, v int64) { h.Transaction = v }},
	{"sk", true, 0,
		func(h *Head) int64 { return int64(h.Service) },
		func(h *Head, v int64) { h.Service = ServiceKind(v) }},
	{"pk", true, 0,
		func(h *Head) int64 { return int64(h.Packet) },
		func(h *Head, v int64) { h.Packet = PacketKind(v) }},
	{"bf", false, 0,
		func(h *Head) int64 { return h.Burst },
		func(h *Head, v int64) { h.Burst = v }},
	{"oi", false, 0,
		func(h *Head) int64 { return h.OrderIndex },
		func(h *Head, v int64) { h.OrderIndex = v }},
	{"dt", false, 0,
		func(h *Head) int64 { return h.Datetime },
		func(h *Head, v int64) { h.Datetime = v }},
	{"sn", false, 0,
		func(h *Head) int64 { return h.SegNum },
		func(h *Head, v int64) { h.SegNum = v }},
	{"sc", false, 1,
		func(h *Head) int64 { return h.SegCount },
		func(h *Head, v int64) { h.SegCount = v }},
	{"pf", false, 0,
		func(h *Head) int64 { return h.Pending },
		func(h *Head, v int64) { h.Pending = v }},
	{"af", false, 0,
		func(h *Head) int64 { return h.ResendAll },
		func(h *Head, v int64) { h.ResendAll = v }},
	{"nk", false, 0,
		func(h *Head) int64 { return int64(h.NeckKind) },
		func(h *Head, v int64) { h.NeckKind = NeckKind(v) }},
	{"nl", false, 0,
		func(h *Head) int64 { return int64(h.NeckLen) },
		func(h *Head, v int64) { h.NeckLen = int(v) }},
	{"bk", false, 0,
		func(h *Head) int64 { return int64(h.BodyKind) },
		func(h *Head, v int64) { h.BodyKind = BodyKind(v) }},
	{"bl", false, 0,
		func(h *Head) int64 { return int64(h.BodyLen) },
		func(h *Head, v int64) { h.BodyLen = int(v) }},
	{"tk", false, 0,
		func(h *Head) int64 { return int64(h.TailKind) },
		func(h *Head, v int64) { h.TailKind = TailKind(v) }},
	{"tl", false, 0,
		func(h *Head) int64 { return int64(h.TailLen) },
		func(h *Head, v int64) { h.TailLen = int(v) }},
}

// applyDefaults resets every table-driven field to its declared default.
// The parser runs this before overlaying decoded fields, so elided fields
// come back at their defaults.
func (h *Head) applyDefaults() {
	for _, f := range headFields {
		f.set(h, f.def)
	}
	h.Len = 0
}
