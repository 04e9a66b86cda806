// Command weave-scan is a reference CLI around the mDNS Scanner core.
//
// Usage:
//
//	weave-scan find --vendor 0xFFF1
//	weave-scan browse
//	weave-scan shell
//
// Flags:
//
//	--config string     Configuration file path (YAML)
//	--timeout duration  Discovery timeout (default 5s)
//	--ipv4              Enable IPv4 address queries alongside IPv6
//	--log-level string  Log level: debug, info, warn, error (default "info")
package main

import (
	"fmt"
	"os"

	"github.com/weavehome/weave-go/cmd/weave-scan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
