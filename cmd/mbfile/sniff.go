package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UltraDevsApps/DualBootPatcher/file"
	"github.com/UltraDevsApps/DualBootPatcher/file/stdiofile"
	"github.com/UltraDevsApps/DualBootPatcher/fileutil"
)

func newSniffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sniff <path>...",
		Short: "Report the compression format of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				var f file.File
				if ret := stdiofile.OpenFilename(&f, path, file.ModeReadOnly); ret != file.StatusOK {
					return fmt.Errorf("failed to open %s: %s", path, f.ErrorString())
				}

				format, ret := fileutil.DetectCompression(&f)
				f.Close()
				if ret != file.StatusOK {
					return fmt.Errorf("failed to sniff %s: %s", path, f.ErrorString())
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, format)
			}

			return nil
		},
	}
}
