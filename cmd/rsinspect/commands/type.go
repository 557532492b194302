// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/rsc"
)

func newTypeCommand(v *viper.Viper) *cobra.Command {
	var (
		x, y, z uint32
		mipmaps bool
		faces   bool
	)
	cmd := &cobra.Command{
		Use:   "type ELEMENT",
		Short: "Print the storage layout of a type",
		Long: `Build a type from a well-known element and the given dimensions and
print its element count, storage size and mipmap chain.`,
		Example: "  rsinspect type u8_4 --x 64 --y 32 --mipmaps",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := lookupElement(args[0])
			if err != nil {
				return err
			}
			ctx, err := openContext(cmd, v)
			if err != nil {
				return err
			}
			defer ctx.Close()

			e, err := ctx.Element(k)
			if err != nil {
				return err
			}
			t, err := rsc.NewTypeBuilder(ctx, e).SetX(x).SetY(y).SetZ(z).
				SetMipmaps(mipmaps).SetFaces(faces).Create()
			if err != nil {
				return err
			}
			defer t.Destroy()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "element:  %v (%d bytes)\n", e, e.SizeBytes())
			fmt.Fprintf(out, "count:    %d\n", t.Count())
			fmt.Fprintf(out, "size:     %d bytes\n", t.SizeBytes())
			fmt.Fprintf(out, "storage:  %d bytes\n", t.StorageBytes())
			fmt.Fprintf(out, "faces:    %d\n", t.FaceCount())

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LOD\tX\tY\tZ")
			for lod := range t.MipLevels() {
				lx, ly, lz, err := t.LODExtent(lod)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", lod, lx, ly, lz)
			}
			return w.Flush()
		},
	}

	f := cmd.Flags()
	f.Uint32Var(&x, "x", 1, "X dimension")
	f.Uint32Var(&y, "y", 0, "Y dimension (0 for 1D)")
	f.Uint32Var(&z, "z", 0, "Z dimension (0 for 2D)")
	f.BoolVar(&mipmaps, "mipmaps", false, "allocate a full mipmap chain")
	f.BoolVar(&faces, "faces", false, "cube map with six faces")
	return cmd
}
