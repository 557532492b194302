// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/rsc"
)

func newElementsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "elements [NAME...]",
		Short: "Print the layout of well-known elements",
		Long: `Print size, alignment and vector size of the well-known elements.
With no arguments every element is listed. Names are matched without
regard to case, e.g. "u8_4" or "rgba_8888".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := rsc.KnownElements()
			if len(args) > 0 {
				kinds = kinds[:0:0]
				for _, name := range args {
					k, err := lookupElement(name)
					if err != nil {
						return err
					}
					kinds = append(kinds, k)
				}
			}

			ctx, err := openContext(cmd, v)
			if err != nil {
				return err
			}
			defer ctx.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tSIZE\tALIGN\tVEC")
			for _, k := range kinds {
				e, err := ctx.Element(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%v\t%v\t%d\t%d\t%d\n", k, e, e.SizeBytes(), e.Alignment(), e.VectorSize())
			}
			return w.Flush()
		},
	}
}

// lookupElement finds a well-known element by name.
func lookupElement(name string) (rsc.KnownElement, error) {
	for _, k := range rsc.KnownElements() {
		if strings.EqualFold(k.String(), name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown element %q", name)
}
