package packet

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/danmuck/wirectl/internal/testutil/testlog"
)

func newJSONBodyPacket() *Packet {
	p := New()
	p.Meta.BodyKind = BodyJSON
	return p
}

func TestPackConcreteScenario(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()
	p := newJSONBodyPacket()
	p.Head.Service = ServiceAckRetry
	p.Head.Packet = PacketData
	p.Body.Data = map[string]any{"a": 1}

	raw := c.Pack(p)
	if raw == nil {
		t.Fatalf("pack failed: %s", p.LastErr())
	}

	want := "{\"hk\":0,\"hl\":\"40\",\"sd\":0,\"dd\":0,\"sk\":1,\"pk\":0,\"bk\":1,\"bl\":7}\r\n\r\n" + `{"a":1}`
	if string(raw) != want {
		t.Fatalf("wire mismatch:\n got %q\nwant %q", raw, want)
	}
}

func TestPackLengthSelfConsistency(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()
	p := newJSONBodyPacket()
	p.Head.Session = 12345
	p.Body.Data = map[string]any{"k": "v", "n": 2}

	if c.Pack(p) == nil {
		t.Fatalf("pack failed: %s", p.LastErr())
	}
	if p.Meta.HeadLen != len(p.Head.Pack) {
		t.Fatalf("head length: meta=%d actual=%d", p.Meta.HeadLen, len(p.Head.Pack))
	}
	if p.Meta.NeckLen != len(p.Neck.Pack) {
		t.Fatalf("neck length: meta=%d actual=%d", p.Meta.NeckLen, len(p.Neck.Pack))
	}
	if p.Meta.BodyLen != len(p.Body.Pack) {
		t.Fatalf("body length: meta=%d actual=%d", p.Meta.BodyLen, len(p.Body.Pack))
	}
	if p.Meta.TailLen != len(p.Tail.Pack) {
		t.Fatalf("tail length: meta=%d actual=%d", p.Meta.TailLen, len(p.Tail.Pack))
	}
	if len(p.Raw) != len(p.Head.Pack)+len(p.Neck.Pack)+len(p.Body.Pack)+len(p.Tail.Pack) {
		t.Fatalf("raw is not the part concatenation")
	}
}

func TestPackElision(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()
	p := newJSONBodyPacket()
	p.Head.Session = 99        // non-default, must appear
	p.Head.OrderIndex = 0      // default, must not appear
	p.Head.SegCount = 1        // default (non-zero), must not appear
	p.Head.SrcDevice = 0       // mandatory, must appear even at default
	p.Body.Data = map[string]any{}

	if c.Pack(p) == nil {
		t.Fatalf("pack failed: %s", p.LastErr())
	}
	head := string(p.Head.Pack)
	for _, tag := range []string{`"si":99`, `"sd":0`, `"dd":0`, `"sk":0`, `"pk":0`} {
		if !strings.Contains(head, tag) {
			t.Fatalf("expected %s in header %q", tag, head)
		}
	}
	for _, tag := range []string{`"oi":`, `"sc":`, `"vn":`, `"cf":`, `"nk":`, `"tl":`} {
		if strings.Contains(head, tag) {
			t.Fatalf("elided field %s leaked into header %q", tag, head)
		}
	}
}

var hlPattern = regexp.MustCompile(`"hl":"([0-9a-f]{2})"`)

// readBackLen decodes the patched length field from finalized header bytes.
func readBackLen(t *testing.T, head []byte) int {
	t.Helper()
	m := hlPattern.FindSubmatch(head)
	if m == nil {
		t.Fatalf("no hl field in header %q", head)
	}
	n, err := strconv.ParseInt(string(m[1]), 16, 32)
	if err != nil {
		t.Fatalf("bad hl hex: %v", err)
	}
	return int(n)
}

func TestPackLengthPatch(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()
	p := newJSONBodyPacket()
	p.Head.Transaction = 31337
	p.Body.Data = map[string]any{"x": true}

	if c.Pack(p) == nil {
		t.Fatalf("pack failed: %s", p.LastErr())
	}
	if got := readBackLen(t, p.Head.Pack); got != len(p.Head.Pack) {
		t.Fatalf("patched hl=%d, actual head length=%d", got, len(p.Head.Pack))
	}
	if !bytes.HasSuffix(p.Head.Pack, []byte(headEnd)) {
		t.Fatalf("header missing end marker")
	}
}

// digitsValue returns a positive int64 with exactly n decimal digits.
func digitsValue(n int) int64 {
	v := int64(1)
	for i := 1; i < n; i++ {
		v *= 10
	}
	return v
}

// buildHeadWithLen constructs a packet whose emitted header serializes to
// exactly target bytes, by spending optional fields (each `,"xx":V` costs
// 6+digits bytes) and fine-tuning with the mandatory device-id digits.
func buildHeadWithLen(t *testing.T, c *Codec, target int) *Packet {
	t.Helper()

	probe := newJSONBodyPacket()
	if c.Pack(probe) == nil {
		t.Fatalf("probe pack failed: %s", probe.LastErr())
	}
	remaining := target - probe.Meta.HeadLen
	if remaining < 0 {
		t.Fatalf("base header already %d bytes, above target %d", probe.Meta.HeadLen, target)
	}

	p := newJSONBodyPacket()
	bigs := []*int64{
		&p.Head.Session, &p.Head.Transaction, &p.Head.OrderIndex,
		&p.Head.Datetime, &p.Head.SegNum,
	}
	for _, f := range bigs {
		if remaining <= 36 {
			break
		}
		*f = digitsValue(19) // `,"xx":` + 19 digits = 25 bytes
		remaining -= 25
	}
	flags := []*int64{
		&p.Head.Corresponder, &p.Head.Multicast, &p.Head.Burst,
		&p.Head.Pending, &p.Head.ResendAll, &p.Head.Version,
	}
	for _, f := range flags {
		if remaining <= 36 {
			break
		}
		*f = 1 // `,"xx":1` = 7 bytes
		remaining -= 7
	}
	if remaining < 0 || remaining > 36 {
		t.Fatalf("cannot pad header to %d bytes (left %d)", target, remaining)
	}
	// sd/dd are always emitted with one digit; extra digits are free bytes.
	a := remaining
	if a > 18 {
		a = 18
	}
	p.Head.SrcDevice = digitsValue(a + 1)
	p.Head.DstDevice = digitsValue(remaining - a + 1)
	return p
}

func TestPackMaxHeadLenBoundary(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()

	exact := buildHeadWithLen(t, c, MaxHeadLen)
	if c.Pack(exact) == nil {
		t.Fatalf("pack at the limit failed: %s", exact.LastErr())
	}
	if exact.Meta.HeadLen != MaxHeadLen {
		t.Fatalf("expected head length %d, got %d", MaxHeadLen, exact.Meta.HeadLen)
	}
	if got := readBackLen(t, exact.Head.Pack); got != MaxHeadLen {
		t.Fatalf("patched hl=%d at the limit", got)
	}

	over := buildHeadWithLen(t, c, MaxHeadLen+1)
	if raw := c.Pack(over); raw != nil {
		t.Fatalf("expected pack to abort one byte over the limit")
	}
	if over.LastErr() == "" {
		t.Fatalf("expected an error one byte over the limit")
	}
	if over.Meta.HeadLen != 0 {
		t.Fatalf("expected head length forced to 0, got %d", over.Meta.HeadLen)
	}
	if len(over.Head.Pack) != 0 {
		t.Fatalf("expected no partial header, got %q", over.Head.Pack)
	}
}

func TestPackRawScalarBodyWinsOverData(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()
	p := newJSONBodyPacket()
	p.Body.Raw = "ping"
	p.Body.Data = map[string]any{"ignored": true}

	if c.Pack(p) == nil {
		t.Fatalf("pack failed: %s", p.LastErr())
	}
	if string(p.Body.Pack) != `"ping"` {
		t.Fatalf("raw scalar not preferred: %q", p.Body.Pack)
	}
}

func TestPackEmptyBodyPacksEmptyObject(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()
	p := newJSONBodyPacket()

	if c.Pack(p) == nil {
		t.Fatalf("pack failed: %s", p.LastErr())
	}
	if string(p.Body.Pack) != "{}" {
		t.Fatalf("empty body packed as %q", p.Body.Pack)
	}
	if p.Meta.BodyLen != 2 {
		t.Fatalf("body length %d", p.Meta.BodyLen)
	}
}

func TestPackNonJSONHeadKindAborts(t *testing.T) {
	testlog.Start(t)
	c := NewCodec()
	p := newJSONBodyPacket()
	p.Head.Kind = HeadBinary

	if raw := c.Pack(p); raw != nil {
		t.Fatalf("expected abort for binary head kind")
	}
	if p.LastErr() != errHeadUnrecognizible {
		t.Fatalf("unexpected error %q", p.LastErr())
	}
	if p.Meta.HeadLen != 0 || len(p.Head.Pack) != 0 {
		t.Fatalf("expected no header output")
	}
}
