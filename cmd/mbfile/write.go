package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/UltraDevsApps/DualBootPatcher/file"
	"github.com/UltraDevsApps/DualBootPatcher/file/stdiofile"
	"github.com/UltraDevsApps/DualBootPatcher/fileutil"
	"github.com/UltraDevsApps/DualBootPatcher/fsattr"
)

func newWriteCmd() *cobra.Command {
	var appendTo bool
	var attrsFrom string

	cmd := &cobra.Command{
		Use:   "write <path>",
		Short: "Write standard input to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mode := file.ModeWriteOnly
			if appendTo {
				mode = file.ModeAppend
			}

			var f file.File
			if ret := stdiofile.OpenFilename(&f, args[0], mode); ret != file.StatusOK {
				return fmt.Errorf("failed to open %s: %s", args[0], f.ErrorString())
			}

			n, err := io.Copy(fileutil.NewWriter(&f), os.Stdin)
			if err != nil {
				f.Close()
				return fmt.Errorf("failed to write to %s: %w", args[0], err)
			}
			logrus.Debugf("wrote %d bytes", n)

			if ret := f.Close(); ret != file.StatusOK {
				return fmt.Errorf("failed to close %s: %s", args[0], f.ErrorString())
			}

			if attrsFrom != "" {
				if err := fsattr.CopyAttributes(attrsFrom, args[0]); err != nil {
					return err
				}
				logrus.Debugf("copied attributes from %s", attrsFrom)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&appendTo, "append", "a", false, "append instead of truncating")
	cmd.Flags().StringVar(&attrsFrom, "attrs-from", "", "copy permissions, xattrs and times from this path afterwards")

	return cmd
}
