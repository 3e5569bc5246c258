// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/luxfi/custodyvm/vms/custodyvm/cmd/run"
)

func main() {
	if err := run.Command().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "custodyvm failed: %s\n", err)
		os.Exit(1)
	}
}
