package main

import (
	"os"

	common "github.com/Determinant/cordwood/cmd/cordwood/internal"
	"github.com/Determinant/cordwood/cmd/cordwood/internal/array"
	"github.com/Determinant/cordwood/cmd/cordwood/internal/storage"
	"github.com/Determinant/cordwood/cmd/internal/cmderr"
	"github.com/Determinant/cordwood/misc"
	"github.com/spf13/cobra"
)

var command = &cobra.Command{
	Use:   "cordwood",
	Short: "Cordwood persistent array storage",
	Long: `Cordwood keeps a persistent copy-on-write array of 64-bit integers
in a storage directory and provides tools to modify and inspect it.`,
	RunE:          entryPoint,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func entryPoint(cmd *cobra.Command, _ []string) error {
	printVersion, _ := cmd.Flags().GetBool("version")
	if printVersion {
		cmd.Print(misc.BuildInfo("Cordwood"))

		return nil
	}

	return cmd.Usage()
}

func init() {
	// use stdout as default output for cmd.Print()
	command.SetOut(os.Stdout)
	command.Flags().Bool("version", false, "Application version")
	common.AddPersistentFlags(command)
	command.AddCommand(
		array.Root,
		storage.InfoCMD,
		storage.FilesCMD,
	)
}

func main() {
	err := command.Execute()
	cmderr.ExitOnErr(err)
}
