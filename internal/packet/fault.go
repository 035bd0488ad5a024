package packet

import "github.com/rs/zerolog/log"

// Stage identifies one step of the pack or parse pipeline.
type Stage uint8

const (
	StageHead Stage = iota
	StageNeck
	StageVouch
	StageBody
	StageTail
	StageVerify
)

var stageNames = map[Stage]string{
	StageHead:   "head",
	StageNeck:   "neck",
	StageVouch:  "vouch",
	StageBody:   "body",
	StageTail:   "tail",
	StageVerify: "verify",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return unknownName
}

// Fault is one recorded stage failure. Faults are never raised across the
// pack/parse boundary; they accumulate on the packet.
type Fault struct {
	Stage  Stage
	Reason string
}

func (f Fault) Error() string {
	return "packet: " + f.Stage.String() + ": " + f.Reason
}

// The original wire-facing error strings. Callers match on these.
const (
	errHeadUnrecognizible = "Unrecognizible packet head."
	errNeckUnrecognizible = "Unrecognizible packet neck."
	errBodyUnrecognizible = "Unrecognizible packet body."
	errTailUnrecognizible = "Unrecognizible packet tail."
	errHeadLenMismatch    = "Actual head length does not match head field value."
	errHeadKindMismatch   = "Actual head kind does not match head field value."
	errVouchRejected      = "Head failed authentication."
	errVerifyRejected     = "Body failed verification."
)

// beginStage resets the last-error mirror for the next pipeline stage.
func (p *Packet) beginStage() { p.Meta.Err = "" }

// fault records a stage failure: Meta.Err carries the latest reason, the
// fault list keeps the full history of the call.
func (p *Packet) fault(s Stage, reason string) {
	p.Meta.Err = reason
	p.Faults = append(p.Faults, Fault{Stage: s, Reason: reason})
	log.Debug().Str("stage", s.String()).Str("reason", reason).Msg("packet codec fault")
}

// failPart applies the uniform unrecognized-kind contract for one part:
// record the fault, zero the part length and force its kind to unknown so
// downstream slicing stays consistent.
func (p *Packet) failPart(s Stage, reason string) {
	switch s {
	case StageNeck:
		p.Meta.NeckLen = 0
		p.Meta.NeckKind = NeckUnknown
	case StageBody:
		p.Meta.BodyLen = 0
		p.Meta.BodyKind = BodyUnknown
	case StageTail:
		p.Meta.TailLen = 0
		p.Meta.TailKind = TailUnknown
	}
	p.fault(s, reason)
}
