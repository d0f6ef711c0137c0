package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/version"
)

var (
	versionJSON bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetInfo("pikeru")
		if versionJSON {
			_ = json.NewEncoder(os.Stdout).Encode(info)
			return
		}
		fmt.Println(version.String("pikeru"))
		if verbose && info.Revision != "" {
			fmt.Printf("revision %s %s\n", info.Revision, info.BuildTime)
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
	rootCmd.Version = version.Get()
}
