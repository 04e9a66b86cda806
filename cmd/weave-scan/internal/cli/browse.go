package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weavehome/weave-go/pkg/discovery"
)

func newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Continuously stream newly-seen commissionable devices until the timeout elapses",
		RunE:  runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	pred := discovery.Predicate{Kind: discovery.PredicateAny}
	return scanner.FindCommissionableDevicesContinuously(ctx, pred, func(d *discovery.CommissionableDevice) {
		printCommissionableDevices(cmd, []*discovery.CommissionableDevice{d})
	}, timeoutFlag.Seconds(), nil)
}
