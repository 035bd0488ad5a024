package packet

// VouchFunc authenticates a parsed head using the neck's contents. It may
// set m.Err with a rejection reason; the parser trusts the boolean as
// final.
type VouchFunc func(m *Meta, h *Head, n *Neck) bool

// VerifyFunc integrity-checks a parsed body using the tail's contents.
// Same contract as VouchFunc.
type VerifyFunc func(m *Meta, b *Body, t *Tail) bool

// Codec holds the strategy dispatch tables, the transport-owned meta
// defaults and the two validation checkpoints. Build and configure a Codec
// before first use; after that it is read-only and safe for concurrent
// Pack/Parse calls on independent packets.
type Codec struct {
	Defaults   MetaDefaults
	VouchHead  VouchFunc
	VerifyBody VerifyFunc

	neck map[NeckKind]Strategy
	body map[BodyKind]Strategy
	tail map[TailKind]Strategy
}

// NewCodec returns a codec with the built-in strategies (nada for neck and
// tail, json for body), accept-all checkpoints and the protocol's meta
// defaults.
func NewCodec() *Codec {
	return &Codec{
		Defaults:   BuiltinMetaDefaults(),
		VouchHead:  func(*Meta, *Head, *Neck) bool { return true },
		VerifyBody: func(*Meta, *Body, *Tail) bool { return true },
		neck:       builtinNeckStrategies(),
		body:       builtinBodyStrategies(),
		tail:       builtinTailStrategies(),
	}
}

// RegisterNeckStrategy installs or replaces the strategy for a neck kind.
func (c *Codec) RegisterNeckStrategy(k NeckKind, s Strategy) { c.neck[k] = s }

// RegisterBodyStrategy installs or replaces the strategy for a body kind.
func (c *Codec) RegisterBodyStrategy(k BodyKind, s Strategy) { c.body[k] = s }

// RegisterTailStrategy installs or replaces the strategy for a tail kind.
func (c *Codec) RegisterTailStrategy(k TailKind, s Strategy) { c.tail[k] = s }
