package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/wirectl/internal/config"
	"github.com/danmuck/wirectl/internal/logging"
	"github.com/danmuck/wirectl/internal/packet"
)

func main() {
	logging.ConfigureRuntime()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "pack":
		err = runPack(os.Args[2:])
	case "parse":
		err = runParse(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("wirectl failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wirectl pack|parse [flags]")
	fmt.Fprintln(os.Stderr, "  pack   read a JSON body and emit the wire form")
	fmt.Fprintln(os.Stderr, "  parse  read a wire buffer and emit a decode report")
}

func newCodec(configPath string) (*packet.Codec, error) {
	c := packet.NewCodec()
	if configPath == "" {
		return c, nil
	}
	tr, err := config.LoadTransport(configPath)
	if err != nil {
		return nil, err
	}
	c.Defaults = tr.MetaDefaults()
	return c, nil
}

func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	in := fs.String("in", "-", "JSON body file, - for stdin")
	out := fs.String("out", "-", "wire output file, - for stdout")
	configPath := fs.String("config", "", "TOML config file")
	session := fs.Int64("si", 0, "session id")
	transaction := fs.Int64("ti", 0, "transaction id")
	srcDevice := fs.Int64("sd", 0, "source device id")
	dstDevice := fs.Int64("dd", 0, "destination device id")
	service := fs.Int("sk", int(packet.ServiceFireForget), "service kind code")
	pkind := fs.Int("pk", int(packet.PacketData), "packet kind code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	codec, err := newCodec(*configPath)
	if err != nil {
		return err
	}
	data, err := readInput(*in)
	if err != nil {
		return err
	}

	p := packet.New()
	p.Meta.FillDefaults(codec.Defaults)
	p.Meta.BodyKind = packet.BodyJSON
	p.Head.Session = *session
	p.Head.Transaction = *transaction
	p.Head.SrcDevice = *srcDevice
	p.Head.DstDevice = *dstDevice
	p.Head.Service = packet.ServiceKind(*service)
	p.Head.Packet = packet.PacketKind(*pkind)

	if len(data) > 0 {
		var body map[string]any
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("wirectl: body is not a JSON object: %w", err)
		}
		p.Body.Data = body
	}

	raw := codec.Pack(p)
	if raw == nil {
		return fmt.Errorf("wirectl: pack failed: %s", p.LastErr())
	}
	for _, f := range p.Faults {
		log.Warn().Str("stage", f.Stage.String()).Str("reason", f.Reason).Msg("pack fault")
	}
	return writeOutput(*out, raw)
}

func runParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	in := fs.String("in", "-", "wire input file, - for stdin")
	out := fs.String("out", "-", "report output file, - for stdout")
	configPath := fs.String("config", "", "TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	codec, err := newCodec(*configPath)
	if err != nil {
		return err
	}
	raw, err := readInput(*in)
	if err != nil {
		return err
	}

	p := packet.Inbound(raw)
	rest, ok := codec.Parse(p)
	report := decodeReport(p, rest, ok)
	buf, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := writeOutput(*out, append(buf, '\n')); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wirectl: parse rejected: %s", p.LastErr())
	}
	return nil
}

func decodeReport(p *packet.Packet, rest []byte, ok bool) map[string]any {
	faults := make([]map[string]string, 0, len(p.Faults))
	for _, f := range p.Faults {
		faults = append(faults, map[string]string{
			"stage":  f.Stage.String(),
			"reason": f.Reason,
		})
	}
	return map[string]any{
		"accepted": ok,
		"head": map[string]any{
			"kind":        p.Head.Kind.String(),
			"len":         p.Head.Len,
			"version":     packet.VersionName(int(p.Head.Version)),
			"src_device":  p.Head.SrcDevice,
			"dst_device":  p.Head.DstDevice,
			"session":     p.Head.Session,
			"transaction": p.Head.Transaction,
			"service":     p.Head.Service.String(),
			"packet":      p.Head.Packet.String(),
			"seg_num":     p.Head.SegNum,
			"seg_count":   p.Head.SegCount,
		},
		"neck": map[string]any{"kind": p.Meta.NeckKind.String(), "len": p.Meta.NeckLen},
		"body": map[string]any{
			"kind": p.Meta.BodyKind.String(),
			"len":  p.Meta.BodyLen,
			"data": p.Body.Data,
			"raw":  p.Body.Raw,
		},
		"tail":      map[string]any{"kind": p.Meta.TailKind.String(), "len": p.Meta.TailLen},
		"remainder": len(rest),
		"faults":    faults,
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
