package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/weavehome/weave-go/pkg/discovery"
)

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive discovery shell",
		RunE:  runShell,
	}
}

// shell is the interactive REPL, using chzyer/readline for line editing
// and history instead of a bare bufio.Scanner.
type shell struct {
	sessionID uuid.UUID
	scanner   *discovery.Scanner
	rl        *readline.Instance
}

func runShell(cmd *cobra.Command, args []string) error {
	sc, err := discovery.NewScanner(discovery.ScannerConfig{
		EnableIPv4: ipv4Flag,
		Logger:     newLogger(),
	})
	if err != nil {
		return fmt.Errorf("create scanner: %w", err)
	}
	defer sc.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "weave> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	s := &shell{sessionID: uuid.New(), scanner: sc, rl: rl}
	fmt.Fprintf(os.Stdout, "weave-scan shell, session %s\n", s.sessionID)
	return s.run(cmd.Context())
}

func (s *shell) run(ctx context.Context) error {
	for {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "find":
			s.cmdFind(ctx, fields[1:])
		case "operational":
			s.cmdOperational(ctx, fields[1:])
		case "cached":
			s.cmdCached()
		default:
			fmt.Fprintf(os.Stdout, "unknown command: %s\n", fields[0])
		}
	}
}

func (s *shell) cmdFind(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stdout, "usage: find <vendorId-hex>")
		return
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 16)
	if err != nil {
		fmt.Fprintf(os.Stdout, "invalid vendor id: %v\n", err)
		return
	}
	devices, err := s.scanner.FindCommissionableDevices(ctx, discovery.Predicate{Kind: discovery.PredicateVendor, VendorID: uint16(v)}, timeoutFlag.Seconds(), false)
	if err != nil {
		fmt.Fprintf(os.Stdout, "error: %v\n", err)
		return
	}
	for _, d := range devices {
		fmt.Fprintf(os.Stdout, "%s V=0x%04X P=0x%04X\n", d.DeviceIdentifier, d.V, d.P)
	}
}

func (s *shell) cmdOperational(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stdout, "usage: operational <matter-qname>")
		return
	}
	dev, err := s.scanner.FindOperationalDevice(ctx, args[0], timeoutFlag.Seconds(), false)
	if err != nil {
		fmt.Fprintf(os.Stdout, "error: %v\n", err)
		return
	}
	if dev == nil {
		fmt.Fprintln(os.Stdout, "not found")
		return
	}
	fmt.Fprintf(os.Stdout, "%s: %d address(es)\n", dev.DeviceIdentifier, len(dev.Addresses))
}

func (s *shell) cmdCached() {
	devices := s.scanner.GetDiscoveredCommissionableDevices(discovery.Predicate{Kind: discovery.PredicateAny})
	fmt.Fprintf(os.Stdout, "%d cached commissionable device(s)\n", len(devices))
}
