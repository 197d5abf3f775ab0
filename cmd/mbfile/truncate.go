package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/UltraDevsApps/DualBootPatcher/file"
	"github.com/UltraDevsApps/DualBootPatcher/file/stdiofile"
)

func newTruncateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "truncate <path> <size>",
		Short: "Truncate or extend a file to the given size",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			size, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid size %q: %w", args[1], err)
			}

			var f file.File
			if ret := stdiofile.OpenFilename(&f, args[0], file.ModeReadWrite); ret != file.StatusOK {
				return fmt.Errorf("failed to open %s: %s", args[0], f.ErrorString())
			}
			defer f.Close()

			if ret := f.Truncate(size); ret != file.StatusOK {
				return fmt.Errorf("failed to truncate %s: %s", args[0], f.ErrorString())
			}

			return nil
		},
	}
}
