package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weavehome/weave-go/pkg/discovery"
)

var (
	findInstance   string
	findLong       uint16
	findShort      uint8
	findVendor     uint16
	findProduct    uint16
	findDeviceType uint32
	findAny        bool
)

func newFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find commissionable devices matching a single predicate and exit",
		Long: `Find runs exactly one discovery cycle against a single predicate.

Examples:
  weave-scan find --vendor 0xFFF1
  weave-scan find --long-discriminator 3840
  weave-scan find --any
`,
		RunE: runFind,
	}
	cmd.Flags().StringVar(&findInstance, "instance", "", "match by service instance id")
	cmd.Flags().Uint16Var(&findLong, "long-discriminator", 0, "match by long discriminator (D)")
	cmd.Flags().Uint8Var(&findShort, "short-discriminator", 0, "match by short discriminator (SD)")
	cmd.Flags().Uint16Var(&findVendor, "vendor", 0, "match by vendor id")
	cmd.Flags().Uint16Var(&findProduct, "product", 0, "match by product id")
	cmd.Flags().Uint32Var(&findDeviceType, "device-type", 0, "match by device type")
	cmd.Flags().BoolVar(&findAny, "any", false, "match any device currently in commissioning mode")
	return cmd
}

func predicateFromFlags() (discovery.Predicate, error) {
	switch {
	case findInstance != "":
		return discovery.Predicate{Kind: discovery.PredicateInstance, InstanceID: findInstance}, nil
	case findLong != 0:
		return discovery.Predicate{Kind: discovery.PredicateLongDiscriminator, LongDiscriminator: findLong}, nil
	case findShort != 0:
		return discovery.Predicate{Kind: discovery.PredicateShortDiscriminator, ShortDiscriminator: findShort}, nil
	case findVendor != 0 && findProduct != 0:
		return discovery.Predicate{Kind: discovery.PredicateVendorProduct, VendorID: findVendor, ProductID: findProduct}, nil
	case findVendor != 0:
		return discovery.Predicate{Kind: discovery.PredicateVendor, VendorID: findVendor}, nil
	case findProduct != 0:
		return discovery.Predicate{Kind: discovery.PredicateProduct, ProductID: findProduct}, nil
	case findDeviceType != 0:
		return discovery.Predicate{Kind: discovery.PredicateDeviceType, DeviceType: findDeviceType}, nil
	case findAny:
		return discovery.Predicate{Kind: discovery.PredicateAny}, nil
	default:
		return discovery.Predicate{}, discovery.ErrInvalidPredicate
	}
}

func runFind(cmd *cobra.Command, args []string) error {
	pred, err := predicateFromFlags()
	if err != nil {
		return err
	}

	scanner, err := discovery.NewScanner(discovery.ScannerConfig{
		EnableIPv4: ipv4Flag,
		Logger:     newLogger(),
	})
	if err != nil {
		return fmt.Errorf("create scanner: %w", err)
	}
	defer scanner.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	devices, err := scanner.FindCommissionableDevices(ctx, pred, timeoutFlag.Seconds(), false)
	if err != nil {
		return err
	}
	printCommissionableDevices(cmd, devices)
	return nil
}

func printCommissionableDevices(cmd *cobra.Command, devices []*discovery.CommissionableDevice) {
	if len(devices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no devices found")
		return
	}
	for _, d := range devices {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  D=%d SD=%d CM=%d V=0x%04X P=0x%04X DT=%d\n",
			d.DeviceIdentifier, d.D, d.SD, d.CM, d.V, d.P, d.DT)
		for _, a := range discovery.SortAddresses(addressList(d.Addresses)) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s:%d\n", a.IP, a.Port)
		}
	}
}

func addressList(m map[string]discovery.Address) []discovery.Address {
	out := make([]discovery.Address, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	return out
}
