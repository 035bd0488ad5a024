package packet

// Every kind registry is a closed set of codes with an inverse name lookup
// and a reserved unknown sentinel (255). Lookups are total: a code or name
// outside the set resolves to unknown, never a fault.

const unknownName = "unknown"

// HeadKind selects the header encoding.
type HeadKind uint8

const (
	HeadJSON    HeadKind = 0
	HeadBinary  HeadKind = 1
	HeadUnknown HeadKind = 255
)

var headKindNames = map[HeadKind]string{
	HeadJSON:   "json",
	HeadBinary: "binary",
}

func (k HeadKind) String() string {
	if n, ok := headKindNames[k]; ok {
		return n
	}
	return unknownName
}

// HeadKindOf returns the code for name, or HeadUnknown.
func HeadKindOf(name string) HeadKind {
	for k, n := range headKindNames {
		if n == name {
			return k
		}
	}
	return HeadUnknown
}

// NeckKind selects the authentication strategy.
type NeckKind uint8

const (
	NeckNada    NeckKind = 0
	NeckSodium  NeckKind = 1
	NeckSHA2    NeckKind = 2
	NeckCRC64   NeckKind = 3
	NeckUnknown NeckKind = 255
)

var neckKindNames = map[NeckKind]string{
	NeckNada:   "nada",
	NeckSodium: "sodium",
	NeckSHA2:   "sha2",
	NeckCRC64:  "crc64",
}

// neckSizes declares the signature size in bytes each neck kind produces.
var neckSizes = map[NeckKind]int{
	NeckNada:   0,
	NeckSodium: 0,
	NeckSHA2:   0,
	NeckCRC64:  8,
}

func (k NeckKind) String() string {
	if n, ok := neckKindNames[k]; ok {
		return n
	}
	return unknownName
}

// DeclaredSize returns the signature size the kind is declared to produce.
func (k NeckKind) DeclaredSize() int { return neckSizes[k] }

// NeckKindOf returns the code for name, or NeckUnknown.
func NeckKindOf(name string) NeckKind {
	for k, n := range neckKindNames {
		if n == name {
			return k
		}
	}
	return NeckUnknown
}

// BodyKind selects the payload encoding.
type BodyKind uint8

const (
	BodyNada    BodyKind = 0
	BodyJSON    BodyKind = 1
	BodyBinary  BodyKind = 2
	BodyUnknown BodyKind = 255
)

var bodyKindNames = map[BodyKind]string{
	BodyNada:   "nada",
	BodyJSON:   "json",
	BodyBinary: "binary",
}

func (k BodyKind) String() string {
	if n, ok := bodyKindNames[k]; ok {
		return n
	}
	return unknownName
}

// BodyKindOf returns the code for name, or BodyUnknown.
func BodyKindOf(name string) BodyKind {
	for k, n := range bodyKindNames {
		if n == name {
			return k
		}
	}
	return BodyUnknown
}

// TailKind selects the integrity strategy.
type TailKind uint8

const (
	TailNada    TailKind = 0
	TailCRC16   TailKind = 1
	TailCRC64   TailKind = 2
	TailUnknown TailKind = 255
)

var tailKindNames = map[TailKind]string{
	TailNada:  "nada",
	TailCRC16: "crc16",
	TailCRC64: "crc64",
}

// tailSizes declares the checksum size in bytes each tail kind produces.
var tailSizes = map[TailKind]int{
	TailNada:  0,
	TailCRC16: 2,
	TailCRC64: 8,
}

func (k TailKind) String() string {
	if n, ok := tailKindNames[k]; ok {
		return n
	}
	return unknownName
}

// DeclaredSize returns the checksum size the kind is declared to produce.
func (k TailKind) DeclaredSize() int { return tailSizes[k] }

// TailKindOf returns the code for name, or TailUnknown.
func TailKindOf(name string) TailKind {
	for k, n := range tailKindNames {
		if n == name {
			return k
		}
	}
	return TailUnknown
}

// ServiceKind tags the delivery service a packet belongs to.
type ServiceKind uint8

const (
	ServiceFireForget ServiceKind = 0
	ServiceAckRetry   ServiceKind = 1
	ServiceUnknown    ServiceKind = 255
)

var serviceKindNames = map[ServiceKind]string{
	ServiceFireForget: "fireforget",
	ServiceAckRetry:   "ackretry",
}

func (k ServiceKind) String() string {
	if n, ok := serviceKindNames[k]; ok {
		return n
	}
	return unknownName
}

// ServiceKindOf returns the code for name, or ServiceUnknown.
func ServiceKindOf(name string) ServiceKind {
	for k, n := range serviceKindNames {
		if n == name {
			return k
		}
	}
	return ServiceUnknown
}

// PacketKind tags the role of a packet within its service.
type PacketKind uint8

const (
	PacketData    PacketKind = 0
	PacketReq     PacketKind = 1
	PacketAck     PacketKind = 8
	PacketNack    PacketKind = 9
	PacketUnknown PacketKind = 255
)

var packetKindNames = map[PacketKind]string{
	PacketData: "data",
	PacketReq:  "req",
	PacketAck:  "ack",
	PacketNack: "nack",
}

func (k PacketKind) String() string {
	if n, ok := packetKindNames[k]; ok {
		return n
	}
	return unknownName
}

// PacketKindOf returns the code for name, or PacketUnknown.
func PacketKindOf(name string) PacketKind {
	for k, n := range packetKindNames {
		if n == name {
			return k
		}
	}
	return PacketUnknown
}

// Protocol versions.
const Version0 = 0

var versionNames = map[int]string{
	Version0: "0.1",
}

// VersionName returns the dotted name for a version code, or "unknown".
func VersionName(v int) string {
	if n, ok := versionNames[v]; ok {
		return n
	}
	return unknownName
}
