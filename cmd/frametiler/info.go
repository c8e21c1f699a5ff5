package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/e7canasta/frametiler/imageseq"
	"github.com/e7canasta/frametiler/meta"
)

var infoCmd = &cobra.Command{
	Use:   "info DIR",
	Short: "Summarize a sequence directory and its partition provenance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := imageseq.Read(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("frames: %d\n", seq.Len())
		fmt.Printf("shape:  %s\n", seq.Shape())

		first, err := seq.Frame(context.Background(), 0)
		if err != nil {
			return err
		}
		tag, present, err := meta.FromFrame(first)
		if err != nil {
			return err
		}
		if !present {
			fmt.Println("units:  untagged (manual parameters needed for reconstruction)")
			return nil
		}
		fmt.Printf("run:    %s\n", tag.RunID)
		for _, a := range tag.Axes {
			fmt.Printf("axis %-6s extent=%d unit=%d overlap=%d count=%d policy=%s",
				a.Axis, a.Extent, a.Unit, a.Overlap, a.Count, a.Policy)
			if a.Fill != "" {
				fmt.Printf(" fill=%s", a.Fill)
			}
			fmt.Println()
		}
		if pad, ok, err := meta.PadFromFrame(first); err == nil && ok {
			fmt.Printf("pad:    %dx%d +L%d +R%d +T%d +B%d\n",
				pad.OrigW, pad.OrigH, pad.Left, pad.Right, pad.Top, pad.Bottom)
		}
		if tpad, ok, err := meta.TPadFromFrame(first); err == nil && ok {
			fmt.Printf("tpad:   %d frames +%d head +%d tail\n", tpad.OrigLen, tpad.Start, tpad.End)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
