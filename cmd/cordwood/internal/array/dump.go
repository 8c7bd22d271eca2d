package array

import (
	"errors"

	common "github.com/Determinant/cordwood/cmd/cordwood/internal"
	"github.com/spf13/cobra"
)

var dumpCMD = &cobra.Command{
	Use:   "dump",
	Short: "Print all array elements",
	Args:  cobra.NoArgs,
	RunE:  dumpFunc,
}

func dumpFunc(cmd *cobra.Command, _ []string) (err error) {
	s, err := common.OpenStorage(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	return s.ArrayDump(cmd.OutOrStdout())
}
