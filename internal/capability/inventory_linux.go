//go:build linux

package capability

import (
	"context"
	"strings"

	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"
)

// listAdapters walks the existing PCI devices known to udev and keeps display
// controllers (PCI base class 0x03).
func listAdapters(ctx context.Context) ([]string, error) {
	queue := make(chan crawler.Device)
	errs := make(chan error, 1)

	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Env: map[string]string{"SUBSYSTEM": "pci"},
	})
	quit := crawler.ExistingDevices(queue, errs, rules)

	var adapters []string
	for {
		select {
		case <-ctx.Done():
			abandon(quit, queue, errs)
			return adapters, ctx.Err()
		case err := <-errs:
			abandon(quit, queue, errs)
			if len(adapters) > 0 {
				return adapters, nil
			}
			return nil, err
		case device, ok := <-queue:
			if !ok {
				return adapters, nil
			}
			if isDisplayClass(device.Env["PCI_CLASS"]) {
				adapters = append(adapters, adapterFromPCI(device.Env["PCI_ID"]))
			}
		}
	}
}

// isDisplayClass reports PCI class codes 0x03xxxx. udev prints the class
// without leading zeros, so display controllers appear as "30000" or "38000".
func isDisplayClass(class string) bool {
	class = strings.TrimSpace(class)
	return len(class) == 5 && class[0] == '3'
}

// abandon stops the crawl and drains its channels so the walker goroutine is
// never left blocked on a send.
func abandon(quit chan struct{}, queue chan crawler.Device, errs chan error) {
	select {
	case quit <- struct{}{}:
	default:
	}
	go func() {
		for {
			select {
			case _, ok := <-queue:
				if !ok {
					return
				}
			case <-errs:
			}
		}
	}()
}
