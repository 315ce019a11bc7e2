package capability

import (
	"context"
	"strings"
)

// InventoryProbe lists the host's graphics adapters and classifies them by
// vendor.
type InventoryProbe struct {
	list func(ctx context.Context) ([]string, error)
}

func (p *InventoryProbe) Name() string { return "inventory" }

func (p *InventoryProbe) Probe(ctx context.Context) (Class, error) {
	list := p.list
	if list == nil {
		list = listAdapters
	}
	adapters, err := list(ctx)
	if err != nil {
		return ClassNone, err
	}
	return ClassifyAdapters(adapters), nil
}

// Adapters returns the graphics adapter names reported by the host.
func Adapters(ctx context.Context) ([]string, error) {
	return listAdapters(ctx)
}

// ClassifyAdapters picks a class from adapter names. Discrete vendors are
// preferred over integrated Intel graphics when several adapters are present.
func ClassifyAdapters(adapters []string) Class {
	best := ClassNone
	for _, name := range adapters {
		switch class := classifyAdapter(name); {
		case class == ClassNVIDIA:
			return ClassNVIDIA
		case class == ClassAMD:
			best = ClassAMD
		case class == ClassIntel && best == ClassNone:
			best = ClassIntel
		}
	}
	return best
}

var vendorSignatures = []struct {
	needle string
	class  Class
}{
	{"nvidia", ClassNVIDIA},
	{"geforce", ClassNVIDIA},
	{"quadro", ClassNVIDIA},
	{"radeon", ClassAMD},
	{"amd", ClassAMD},
	{"advanced micro devices", ClassAMD},
	{"intel", ClassIntel},
}

func classifyAdapter(name string) Class {
	lower := strings.ToLower(name)
	for _, sig := range vendorSignatures {
		if strings.Contains(lower, sig.needle) {
			return sig.class
		}
	}
	return ClassNone
}

// pciVendorNames maps PCI vendor IDs to the names matched by classifyAdapter.
var pciVendorNames = map[string]string{
	"10de": "NVIDIA",
	"8086": "Intel",
	"1002": "AMD",
	"1022": "AMD",
}

// adapterFromPCI turns a PCI_ID value ("10DE:1C82") into an adapter label.
func adapterFromPCI(pciID string) string {
	vendor, device, _ := strings.Cut(strings.ToLower(strings.TrimSpace(pciID)), ":")
	name, ok := pciVendorNames[vendor]
	if !ok {
		name = "unknown vendor " + vendor
	}
	if device != "" {
		return name + " [" + vendor + ":" + device + "]"
	}
	return name + " [" + vendor + "]"
}
