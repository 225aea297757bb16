package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-core/version"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-foldergen/pkg/render"
)

var versionUlog = grovelogging.NewUnifiedLogger("grove-foldergen.cmd.version")

// buildInfo is what `foldergen version` reports: the release stamped in by
// the build plus the toolchain and the draw formats this binary knows.
type buildInfo struct {
	Version  string   `json:"version"`
	Commit   string   `json:"commit"`
	Branch   string   `json:"branch"`
	Go       string   `json:"go"`
	Platform string   `json:"platform"`
	Formats  []string `json:"formats"`
}

func currentBuildInfo() buildInfo {
	info := version.GetInfo()
	formats := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		formats[i] = string(f)
	}
	return buildInfo{
		Version:  info.Version,
		Commit:   info.Commit,
		Branch:   info.Branch,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Formats:  formats,
	}
}

func (b buildInfo) text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "foldergen %s\n", orUnknown(b.Version))
	fmt.Fprintf(&sb, "  commit:   %s\n", orUnknown(b.Commit))
	fmt.Fprintf(&sb, "  branch:   %s\n", orUnknown(b.Branch))
	fmt.Fprintf(&sb, "  go:       %s\n", b.Go)
	fmt.Fprintf(&sb, "  platform: %s\n", b.Platform)
	fmt.Fprintf(&sb, "  formats:  %s", strings.Join(b.Formats, ", "))
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func NewVersionCmd() *cobra.Command {
	var (
		jsonOutput bool
		short      bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Display the version, commit and branch of foldergen, the Go toolchain
it was built with and the formats accepted by 'foldergen draw'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := currentBuildInfo()

			var pretty string
			switch {
			case short:
				pretty = orUnknown(b.Version)
			case jsonOutput:
				data, err := json.MarshalIndent(b, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal version info to JSON: %w", err)
				}
				pretty = string(data)
			default:
				pretty = b.text()
			}

			versionUlog.Info("Version info").
				Field("version", b.Version).
				Field("commit", b.Commit).
				Field("go", b.Go).
				Pretty(pretty).
				PrettyOnly().
				Log(context.Background())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information in JSON format")
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}
