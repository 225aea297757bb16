package cmd

import (
	"fmt"
	"strings"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-foldergen/cmd/config"
	"github.com/mattsolo1/grove-foldergen/pkg/render"
	"github.com/mattsolo1/grove-foldergen/pkg/service"
)

var drawUlog = grovelogging.NewUnifiedLogger("grove-foldergen.cmd.draw")

func NewDrawCmd(svc **service.Service) *cobra.Command {
	var (
		format string
		level  int
		levels bool
	)

	cmd := &cobra.Command{
		Use:   "draw <source>",
		Short: "Print the tree of a diagram",
		Long: `Parse a diagram and print its tree.

Formats:
  structure  numbered names with branch connectors (default)
  detailed   also the id, path, level, position and child count of every element
  summary    one line with the number of directories, files and the depth

--level N prints only the elements at level N; --levels prints every level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			if !cmd.Flags().Changed("format") {
				format = viper.GetString("format")
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			p := render.Printer{Format: f, Color: config.UseColor()}

			t, err := s.Load(args[0])
			if err != nil {
				return err
			}

			var out strings.Builder
			switch {
			case levels:
				out.WriteString(p.Levels(t))
			case cmd.Flags().Changed("level"):
				elems := t.Collect(level)
				if len(elems) == 0 {
					return fmt.Errorf("level %d: tree %s has levels 0 to %d", level, t.Name(), t.MaxDepth())
				}
				for _, e := range elems {
					out.WriteString(p.Present(e))
				}
			default:
				out.WriteString(p.Title(t.Root()))
				out.WriteString("\n\n")
				out.WriteString(t.Render(p))
			}

			drawUlog.Info("Tree").
				Field("source", args[0]).
				Field("root", t.Name()).
				Field("format", string(f)).
				Field("elements", t.Count()).
				Pretty(strings.TrimRight(out.String(), "\n")).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "structure", "Output format: structure, detailed or summary")
	cmd.Flags().IntVarP(&level, "level", "l", 0, "Only print the elements at this level")
	cmd.Flags().BoolVar(&levels, "levels", false, "Print the elements of every level")

	return cmd
}
