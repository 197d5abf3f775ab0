package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/UltraDevsApps/DualBootPatcher/file"
	"github.com/UltraDevsApps/DualBootPatcher/file/stdiofile"
	"github.com/UltraDevsApps/DualBootPatcher/fileutil"
)

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <path> <src-offset> <dest-offset> <size>",
		Short: "Move a byte range within a file, handling overlap",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			offsets := make([]uint64, 3)
			for i, arg := range args[1:] {
				v, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid offset %q: %w", arg, err)
				}
				offsets[i] = v
			}

			var f file.File
			if ret := stdiofile.OpenFilename(&f, args[0], file.ModeReadWrite); ret != file.StatusOK {
				return fmt.Errorf("failed to open %s: %s", args[0], f.ErrorString())
			}
			defer f.Close()

			var moved uint64
			if ret := fileutil.Move(&f, offsets[0], offsets[1], offsets[2], &moved); ret != file.StatusOK {
				return fmt.Errorf("failed to move bytes in %s: %s", args[0], f.ErrorString())
			}
			logrus.Debugf("moved %d bytes", moved)

			return nil
		},
	}
}
