package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/wirectl/internal/packet"
)

// Transport holds the transport-owned codec defaults: where packets come
// from and where they go when the caller says nothing.
type Transport struct {
	SrcHost string `toml:"src_host"`
	SrcPort int    `toml:"src_port"`
	DstHost string `toml:"dst_host"`
	DstPort int    `toml:"dst_port"`
}

// File is the on-disk wirectl configuration.
type File struct {
	Transport Transport `toml:"transport"`
}

// LoadTransport reads a TOML config file and returns its transport
// section with the protocol defaults filled in for anything unset.
func LoadTransport(path string) (Transport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transport{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return Transport{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	t := f.Transport
	if t.SrcPort == 0 {
		t.SrcPort = packet.DefaultPort
	}
	if t.DstHost == "" {
		t.DstHost = packet.DefaultDstHost
	}
	if t.DstPort == 0 {
		t.DstPort = packet.DefaultPort
	}
	if err := Validate(t); err != nil {
		return Transport{}, err
	}
	return t, nil
}

// Validate rejects port values outside the UDP range.
func Validate(t Transport) error {
	for _, p := range []int{t.SrcPort, t.DstPort} {
		if p < 1 || p > 65535 {
			return fmt.Errorf("config: port %d out of range", p)
		}
	}
	return nil
}

// MetaDefaults maps the transport section onto the codec's meta defaults.
func (t Transport) MetaDefaults() packet.MetaDefaults {
	return packet.MetaDefaults{
		SrcHost: t.SrcHost,
		SrcPort: t.SrcPort,
		DstHost: t.DstHost,
		DstPort: t.DstPort,
	}
}

// Default returns the transport section wirectl runs with when no config
// file is given.
func Default() Transport {
	return Transport{
		SrcHost: "",
		SrcPort: packet.DefaultPort,
		DstHost: packet.DefaultDstHost,
		DstPort: packet.DefaultPort,
	}
}
