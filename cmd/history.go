package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-foldergen/pkg/history"
	"github.com/mattsolo1/grove-foldergen/pkg/service"
)

var historyUlog = grovelogging.NewUnifiedLogger("grove-foldergen.cmd.history")

func NewHistoryCmd(svc **service.Service) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous builds",
		Long:  "List the most recent builds, newest first. Use 'foldergen history show <id>' for the details of one build.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builds, err := (*svc).Builds(limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := json.MarshalIndent(builds, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal builds to JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if len(builds) == 0 {
				historyUlog.Info("No builds").
					Pretty("No builds recorded yet.").
					PrettyOnly().
					Emit()
				return nil
			}

			printBuildsTable(builds)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of builds to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	cmd.AddCommand(newHistoryShowCmd(svc))

	return cmd
}

func newHistoryShowCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of a build",
		Long:  "Show the details of a build. Any unique prefix of the build id is accepted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := (*svc).GetBuild(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROPERTY\tVALUE")
			fmt.Fprintln(w, "--------\t-----")
			fmt.Fprintf(w, "ID\t%s\n", b.ID)
			fmt.Fprintf(w, "Date\t%s\n", b.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Status\t%s\n", b.Status)
			fmt.Fprintf(w, "Source\t%s\n", b.Source)
			fmt.Fprintf(w, "Destination\t%s\n", b.Dest)
			fmt.Fprintf(w, "Root\t%s\n", b.Root)
			fmt.Fprintf(w, "Directories\t%d\n", b.Dirs)
			fmt.Fprintf(w, "Files\t%d\n", b.Files)
			fmt.Fprintf(w, "Dry run\t%t\n", b.DryRun)
			if b.Error != "" {
				fmt.Fprintf(w, "Error\t%s\n", b.Error)
			}
			if len(b.Actions) > 0 {
				fmt.Fprintf(w, "Actions\t%s\n", formatActions(b.Actions))
			}
			return w.Flush()
		},
	}
}

func printBuildsTable(builds []*history.Build) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tROOT\tDESTINATION")
	fmt.Fprintln(w, "--------\t----------------\t------\t----\t-----------")

	for _, b := range builds {
		status := b.Status
		if b.DryRun {
			status += " (dry)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(b.ID),
			b.CreatedAt.Local().Format("2006-01-02 15:04"),
			status,
			b.Root,
			b.Dest)
	}

	w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatActions renders action counts as "mkdir=3, touch=5" in name order.
func formatActions(actions map[string]int) string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, actions[name])
	}
	return strings.Join(parts, ", ")
}
