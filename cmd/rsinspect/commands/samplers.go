// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/rsc"
	"github.com/gogpu/rsc/driver"
)

func newSamplersCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "samplers",
		Short: "Print the cached sampler presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openContext(cmd, v)
			if err != nil {
				return err
			}
			defer ctx.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tMIN\tMAG\tWRAP S/T/R\tANISOTROPY")
			for _, p := range rsc.SamplerPresets() {
				s, err := ctx.Sampler(p)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%v\t%v\t%v\t%v/%v/%v\t%g\n", p,
					s.Minification(), s.Magnification(),
					s.WrapS(), s.WrapT(), s.WrapR(), s.Anisotropy())
			}
			return w.Flush()
		},
	}
}

func newDriversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List registered drivers by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range driver.Available() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
