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
)

func newCatCmd() *cobra.Command {
	var decompress bool

	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Dump a file's contents to standard output",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var f file.File
			if ret := stdiofile.OpenFilename(&f, args[0], file.ModeReadOnly); ret != file.StatusOK {
				return fmt.Errorf("failed to open %s: %s", args[0], f.ErrorString())
			}
			defer f.Close()

			var src io.Reader = fileutil.NewReader(&f)

			if decompress {
				format, ret := fileutil.DetectCompression(&f)
				if ret != file.StatusOK {
					return fmt.Errorf("failed to sniff %s: %s", args[0], f.ErrorString())
				}
				logrus.Debugf("detected compression: %s", format)

				dr, err := fileutil.NewDecompressReader(src, format)
				if err != nil {
					return err
				}
				defer dr.Close()
				src = dr
			}

			n, err := io.Copy(os.Stdout, src)
			if err != nil {
				return fmt.Errorf("failed to copy contents of %s: %w", args[0], err)
			}
			logrus.Debugf("copied %d bytes", n)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&decompress, "decompress", "d", false, "decompress recognized formats while dumping")

	return cmd
}
