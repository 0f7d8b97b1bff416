package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/crmarques/credstore/internal/cli/common"
)

// Set through -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func NewCommand(globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return common.WriteOutput(command, globalFlags.Output, currentInfo(), func(w io.Writer, item info) error {
				_, err := fmt.Fprintf(w, "credstore %s (%s) %s %s\n", item.Version, item.Commit, item.BuildDate, item.GoVersion)
				return err
			})
		},
	}
}

func currentInfo() info {
	value := info{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: runtime.Version()}

	// go install builds carry the module version and vcs stamp instead of ldflags
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if value.Version == "dev" && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			value.Version = buildInfo.Main.Version
		}
		for _, setting := range buildInfo.Settings {
			switch {
			case setting.Key == "vcs.revision" && value.Commit == "unknown":
				value.Commit = setting.Value
			case setting.Key == "vcs.time" && value.BuildDate == "unknown":
				value.BuildDate = setting.Value
			}
		}
	}
	return value
}
