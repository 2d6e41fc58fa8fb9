package main

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atulnandan/ospfd"
)

// fileConfig is the on-disk YAML configuration schema. Grounded on
// original_source/ospfd/ospfd.conf's area/interface block shape,
// re-expressed as a yaml.v3 document the way the pack's other daemons
// (config.go in moby-moby's daemon package) load theirs: one struct tree
// decoded in a single Unmarshal, then translated into the core's own
// config types rather than used directly.
type fileConfig struct {
	RouterID string            `yaml:"router_id"`
	LogLevel string            `yaml:"log_level"`
	Areas    []areaConfig      `yaml:"areas"`
	ExternalRoutes []externalRouteConfig `yaml:"external_routes"`
}

type externalRouteConfig struct {
	Network        string `yaml:"network"`
	Mask           string `yaml:"mask"`
	Metric         uint32 `yaml:"metric"`
	Type2          bool   `yaml:"type2"`
	ForwardingAddr string `yaml:"forwarding_addr"`
}

type areaConfig struct {
	ID       string        `yaml:"id"`
	Stub     bool          `yaml:"stub"`
	StubCost uint32        `yaml:"stub_cost"`
	Ranges   []rangeConfig `yaml:"ranges"`

	Interfaces []interfaceConfig `yaml:"interfaces"`
}

type rangeConfig struct {
	Network   string `yaml:"network"`
	Mask      string `yaml:"mask"`
	Advertise bool   `yaml:"advertise"`
}

type interfaceConfig struct {
	Name               string `yaml:"name"`
	Addr               string `yaml:"addr"`
	Mask               string `yaml:"mask"`
	Type               string `yaml:"type"`
	Cost               uint32 `yaml:"cost"`
	HelloInterval      uint32 `yaml:"hello_interval"`
	RouterDeadInterval uint32 `yaml:"router_dead_interval"`
	RxmtInterval       uint32 `yaml:"rxmt_interval"`
	TransmitDelay      uint16 `yaml:"transmit_delay"`
	Priority           uint8  `yaml:"priority"`

	AuthType string     `yaml:"auth_type"`
	AuthKeys []keyConfig `yaml:"auth_keys"`
}

type keyConfig struct {
	KeyID uint8  `yaml:"key_id"`
	Key   string `yaml:"key"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fc, nil
}

func parseIPv4(s string) (uint32, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return 0, fmt.Errorf("invalid IPv4 address %q", s)
	}
	b := ip.To4()
	if b == nil {
		return 0, fmt.Errorf("not an IPv4 address: %q", s)
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func parseInterfaceType(s string) ospf.InterfaceType {
	switch s {
	case "point-to-point":
		return ospf.IfPointToPoint
	case "point-to-multipoint":
		return ospf.IfPointToMultipoint
	case "nbma":
		return ospf.IfNBMA
	case "virtual-link":
		return ospf.IfVirtualLink
	case "loopback":
		return ospf.IfLoopback
	default:
		return ospf.IfBroadcast
	}
}

func parseAuthType(s string) ospf.AuthType {
	switch s {
	case "simple":
		return ospf.AuthSimple
	case "md5":
		return ospf.AuthMD5
	default:
		return ospf.AuthNone
	}
}

// applyFileConfig translates the decoded YAML tree into the core's
// transactional config delta protocol (config.go's CfgStart/CfgUpdate*/
// CfgDone), resolving interface names to kernel indexes along the way.
func applyFileConfig(o *ospf.Ospf, fc *fileConfig) error {
	o.CfgStart()
	for _, ac := range fc.Areas {
		areaID, err := parseIPv4(ac.ID)
		if err != nil {
			return fmt.Errorf("area id: %w", err)
		}

		var ranges []ospf.AreaRange
		for _, r := range ac.Ranges {
			network, err := parseIPv4(r.Network)
			if err != nil {
				return fmt.Errorf("range network: %w", err)
			}
			mask, err := parseIPv4(r.Mask)
			if err != nil {
				return fmt.Errorf("range mask: %w", err)
			}
			ranges = append(ranges, ospf.AreaRange{Network: network, Mask: mask, Advertise: r.Advertise})
		}

		o.CfgUpdateArea(ospf.AreaConfig{ID: areaID, Stub: ac.Stub, StubCost: ac.StubCost, Ranges: ranges})

		for _, ic := range ac.Interfaces {
			ifi, err := net.InterfaceByName(ic.Name)
			if err != nil {
				return fmt.Errorf("interface %s: %w", ic.Name, err)
			}
			addr, err := parseIPv4(ic.Addr)
			if err != nil {
				return fmt.Errorf("interface %s addr: %w", ic.Name, err)
			}
			mask, err := parseIPv4(ic.Mask)
			if err != nil {
				return fmt.Errorf("interface %s mask: %w", ic.Name, err)
			}

			var keys []ospf.AuthKey
			for _, k := range ic.AuthKeys {
				keys = append(keys, ospf.AuthKey{KeyID: k.KeyID, Key: []byte(k.Key)})
			}

			o.CfgUpdateInterface(ospf.InterfaceConfig{
				Index:              uint32(ifi.Index),
				AreaID:             areaID,
				Addr:               addr,
				Mask:               mask,
				Type:               parseInterfaceType(ic.Type),
				Cost:               ic.Cost,
				HelloInterval:      valueOr(ic.HelloInterval, 10),
				RouterDeadInterval: valueOr(ic.RouterDeadInterval, 40),
				RxmtInterval:       valueOr(ic.RxmtInterval, 5),
				TransmitDelay:      ic.TransmitDelay,
				Priority:           valueOrU8(ic.Priority, 1),
				AuthType:           parseAuthType(ic.AuthType),
				AuthKeys:           keys,
			})
		}
	}

	for _, ec := range fc.ExternalRoutes {
		network, err := parseIPv4(ec.Network)
		if err != nil {
			return fmt.Errorf("external route network: %w", err)
		}
		mask, err := parseIPv4(ec.Mask)
		if err != nil {
			return fmt.Errorf("external route mask: %w", err)
		}
		var fwdAddr uint32
		if ec.ForwardingAddr != "" {
			fwdAddr, err = parseIPv4(ec.ForwardingAddr)
			if err != nil {
				return fmt.Errorf("external route forwarding_addr: %w", err)
			}
		}
		o.CfgUpdateExternalRoute(ospf.ExternalRouteConfig{
			Network:        network,
			Mask:           mask,
			Metric:         ec.Metric,
			Type2:          ec.Type2,
			ForwardingAddr: fwdAddr,
		})
	}

	o.CfgDone()
	return nil
}

func valueOr(v, def uint32) uint32 {
	if v == 0 {
		return def
	}
	return v
}

func valueOrU8(v, def uint8) uint8 {
	if v == 0 {
		return def
	}
	return v
}
