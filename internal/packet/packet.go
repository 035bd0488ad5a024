package packet

// Meta is the transient working view of one pack or parse call. Its
// per-part kind/length fields mirror the corresponding head fields after a
// successful header decode: meta is the mutable working copy, head is the
// authoritative wire-visible copy.
type Meta struct {
	SrcHost string // sh
	SrcPort int    // sp
	DstHost string // dh
	DstPort int    // dp

	Version  int      // vn
	HeadKind HeadKind // hk
	HeadLen  int      // hl
	NeckKind NeckKind // nk
	NeckLen  int      // nl
	BodyKind BodyKind // bk
	BodyLen  int      // bl
	TailKind TailKind // tk
	TailLen  int      // tl

	// Err is the last stage's error. It is reset at the start of every
	// pack/parse stage; empty means the most recent stage was clean.
	Err string
}

// Head carries the wire-visible header fields. The per-part kind/length
// copies are derived from meta at the sync point of each pack and never
// read back except for wire serialization.
type Head struct {
	Kind HeadKind // hk
	Len  int      // hl, patched post-hoc as a 2-hex-digit string

	Version      int64 // vn
	SrcDevice    int64 // sd
	DstDevice    int64 // dd
	Corresponder int64 // cf
	Multicast    int64 // mf
	Session      int64 // si
	Transaction  int64 // ti

	Service ServiceKind // sk
	Packet  PacketKind  // pk

	Burst      int64 // bf
	OrderIndex int64 // oi
	Datetime   int64 // dt
	SegNum     int64 // sn
	SegCount   int64 // sc
	Pending    int64 // pf
	ResendAll  int64 // af

	NeckKind NeckKind // nk
	NeckLen  int      // nl
	BodyKind BodyKind // bk
	BodyLen  int      // bl
	TailKind TailKind // tk
	TailLen  int      // tl

	Pack []byte
}

// Neck is the authentication segment. Empty under the nada strategy.
type Neck struct {
	Pack []byte
}

// Body is the payload segment: structured data, or a raw scalar.
type Body struct {
	Data map[string]any
	Raw  any
	Pack []byte
}

// Tail is the integrity trailer. Empty under the nada strategy.
type Tail struct {
	Pack []byte
}

// Packet is one logical packet. A Packet is built fresh per send or per
// receive and never reused across logical packets.
type Packet struct {
	Meta Meta
	Head Head
	Neck Neck
	Body Body
	Tail Tail

	// Raw holds the concatenated wire form after Pack, or the as-received
	// buffer before Parse.
	Raw []byte

	// Faults collects every stage failure of the current call in order.
	// Meta.Err only mirrors the most recent one.
	Faults []Fault
}

// New returns a packet with the protocol defaults applied, notably the
// non-zero head defaults (segment count 1).
func New() *Packet {
	p := &Packet{}
	p.Head.applyDefaults()
	p.Meta.FillDefaults(BuiltinMetaDefaults())
	return p
}

// Inbound returns a packet holding a received raw buffer, ready to Parse.
func Inbound(raw []byte) *Packet {
	p := New()
	p.Raw = raw
	return p
}

// LastErr reports the most recent stage error, empty if clean.
func (p *Packet) LastErr() string { return p.Meta.Err }
