package cmd

import (
	"fmt"
	"strings"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-foldergen/cmd/config"
	"github.com/mattsolo1/grove-foldergen/pkg/render"
	"github.com/mattsolo1/grove-foldergen/pkg/service"
)

var findUlog = grovelogging.NewUnifiedLogger("grove-foldergen.cmd.find")

func NewFindCmd(svc **service.Service) *cobra.Command {
	var (
		path     string
		id       int
		level    int
		position int
	)

	cmd := &cobra.Command{
		Use:   "find <source>",
		Short: "Look up an element of a diagram",
		Long: `Look up one element of a diagram by path, by id, or by level and position,
and print its details.

Paths start with the root name, e.g. base_dir/src/users. Ids are the ones
shown by 'foldergen draw --format detailed'. Positions are 1-based among
siblings; with --level and --position the first element at that level
holding that position is returned.`,
		Example: `  foldergen find layout.txt --path base_dir/src
  foldergen find layout.txt --id 3
  foldergen find layout.txt --level 2 --position 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			flags := cmd.Flags()

			var q service.Query
			switch {
			case flags.Changed("path"):
				q.Path = path
			case flags.Changed("id"):
				q.ID, q.HasID = id, true
			case flags.Changed("level") && flags.Changed("position"):
				q.Level, q.Position = level, position
			default:
				return fmt.Errorf("one of --path, --id or --level with --position is required")
			}

			e, _, err := s.Find(args[0], q)
			if err != nil {
				return err
			}

			p := render.Printer{Format: render.FormatDetailed, Color: config.UseColor()}
			findUlog.Info("Element found").
				Field("source", args[0]).
				Field("id", e.ID()).
				Field("path", e.Path()).
				Field("level", e.Level()).
				Field("position", e.Position()).
				Field("kind", string(e.Kind())).
				Pretty(strings.TrimRight(p.Present(e), "\n")).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Slash-separated path starting with the root name")
	cmd.Flags().IntVar(&id, "id", 0, "Element id")
	cmd.Flags().IntVar(&level, "level", 0, "Level (the root is level 0)")
	cmd.Flags().IntVar(&position, "position", 0, "1-based position among siblings")
	cmd.MarkFlagsMutuallyExclusive("path", "id", "level")
	cmd.MarkFlagsRequiredTogether("level", "position")

	return cmd
}
