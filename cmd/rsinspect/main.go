// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command rsinspect prints the layouts the rsc runtime computes for
// elements, types and sampler presets.
package main

import (
	"os"

	"github.com/gogpu/rsc/cmd/rsinspect/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
