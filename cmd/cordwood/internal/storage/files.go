package storage

import (
	"strconv"

	common "github.com/Determinant/cordwood/cmd/cordwood/internal"
	"github.com/Determinant/cordwood/pkg/local_object_storage/engine"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// FilesCMD contains `files` command definition.
var FilesCMD = &cobra.Command{
	Use:   "files",
	Short: "List backing files of the storage",
	Long:  "List backing files of the storage. The storage is not opened, so the command is safe to run next to a working instance.",
	Args:  cobra.NoArgs,
	RunE:  filesFunc,
}

func filesFunc(cmd *cobra.Command, _ []string) error {
	c, err := common.ReadConfig(cmd)
	if err != nil {
		return err
	}

	path, err := common.StoragePath(c)
	if err != nil {
		return err
	}

	files, err := engine.Files(path)
	if err != nil {
		return err
	}

	out := tablewriter.NewWriter(cmd.OutOrStdout())
	out.SetHeader([]string{"ID", "Name", "Size"})
	out.SetAlignment(tablewriter.ALIGN_RIGHT)
	out.SetAutoWrapText(false)

	for _, f := range files {
		out.Append([]string{
			strconv.FormatUint(f.ID, 10),
			f.Name,
			strconv.FormatInt(f.Size, 10),
		})
	}

	out.Render()

	return nil
}
