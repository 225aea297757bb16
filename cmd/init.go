package cmd

import (
	"fmt"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-foldergen/pkg/service"
)

var initUlog = grovelogging.NewUnifiedLogger("grove-foldergen.cmd.init")

func NewInitCmd(svc **service.Service) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write an example diagram",
		Long: `Write an example diagram to file (default layout.txt) as a starting point.

Edit it, then run 'foldergen draw' to check it and 'foldergen build' to create it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "layout.txt"
			if len(args) == 1 {
				path = args[0]
			}

			if err := (*svc).WriteExample(path, overwrite); err != nil {
				return err
			}

			initUlog.Success("Example written").
				Field("path", path).
				Pretty(fmt.Sprintf("* Wrote example diagram to %s\n\nReady to use! Try 'foldergen draw %s' and 'foldergen build %s'.", path, path, path)).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing file")

	return cmd
}
