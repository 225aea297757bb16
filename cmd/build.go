package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-foldergen/pkg/fsops"
	"github.com/mattsolo1/grove-foldergen/pkg/service"
)

var buildUlog = grovelogging.NewUnifiedLogger("grove-foldergen.cmd.build")

func NewBuildCmd(svc **service.Service) *cobra.Command {
	var (
		override bool
		force    bool
		dryRun   bool
		watchSrc bool
	)

	cmd := &cobra.Command{
		Use:   "build <source> [dist]",
		Short: "Create the folders and files of a diagram",
		Long: `Create the directories and files described by an ASCII tree diagram.

The diagram's root becomes a directory inside dist. dist defaults to a
directory named after the source file in the current directory. A dist
that already has content is refused unless --override (wipe it first) or
--force (build into it, truncating files listed in the diagram) is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			source := args[0]

			dest := ""
			if len(args) == 2 {
				dest = args[1]
			} else {
				d, err := service.DefaultDest(source)
				if err != nil {
					return fmt.Errorf("determine destination: %w", err)
				}
				dest = d
			}

			var opts []service.BuildOption
			if override {
				opts = append(opts, service.Override())
			}
			if force {
				opts = append(opts, service.Force())
			}
			if dryRun {
				opts = append(opts, service.DryRun())
			}

			if !watchSrc {
				out, err := s.Build(source, dest, opts...)
				if err != nil {
					return err
				}
				reportBuild(cmd.Context(), out)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			buildUlog.Info("Watching").
				Field("source", source).
				Field("dest", dest).
				Pretty(fmt.Sprintf("Watching %s (Ctrl-C to stop)", source)).
				PrettyOnly().
				Emit()

			return s.Watch(ctx, source, dest, func(out *service.Outcome, err error) {
				if err != nil {
					buildUlog.Info("Build failed").
						Field("source", source).
						Field("error", err.Error()).
						Pretty(fmt.Sprintf("x Build failed: %v", err)).
						PrettyOnly().
						Emit()
					return
				}
				reportBuild(ctx, out)
			}, opts...)
		},
	}

	cmd.Flags().BoolVarP(&override, "override", "o", false, "Wipe a non-empty destination before building")
	cmd.Flags().BoolVar(&force, "force", false, "Build into a non-empty destination, truncating existing files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print what would be done without touching the filesystem")
	cmd.Flags().BoolVar(&watchSrc, "watch", false, "Rebuild whenever the source changes")

	return cmd
}

func reportBuild(ctx context.Context, out *service.Outcome) {
	if ctx == nil {
		ctx = context.Background()
	}
	res := out.Result

	var b strings.Builder
	if res.DryRun {
		for _, op := range res.Ops {
			b.WriteString(fmt.Sprintf("%-12s %s\n", op.Action, op.Path))
		}
	}
	created := res.Count(fsops.ActionMkdir) + res.Count(fsops.ActionTouch)
	verb := "Created"
	if res.DryRun {
		verb = "Would create"
	}
	b.WriteString(fmt.Sprintf("* %s %d entries for %s in %s (%d directories, %d files)",
		verb, created, out.Record.Root, res.Dest, out.Record.Dirs, out.Record.Files))
	if kept := res.Count(fsops.ActionDirKept) + res.Count(fsops.ActionFileKept); kept > 0 {
		b.WriteString(fmt.Sprintf(", %d kept", kept))
	}
	if n := res.Count(fsops.ActionTruncate); n > 0 {
		b.WriteString(fmt.Sprintf(", %d truncated", n))
	}

	buildUlog.Success("Build complete").
		Field("build_id", out.Record.ID).
		Field("root", out.Record.Root).
		Field("dest", res.Dest).
		Field("dry_run", res.DryRun).
		Field("created", created).
		Pretty(b.String()).
		PrettyOnly().
		Log(ctx)
}
