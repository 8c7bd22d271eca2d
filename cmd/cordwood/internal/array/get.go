package array

import (
	"errors"

	common "github.com/Determinant/cordwood/cmd/cordwood/internal"
	"github.com/spf13/cobra"
)

var getCMD = &cobra.Command{
	Use:   "get <index>",
	Short: "Print array element",
	Args:  cobra.ExactArgs(1),
	RunE:  getFunc,
}

func getFunc(cmd *cobra.Command, args []string) (err error) {
	idx, err := parseUint("index", args[0])
	if err != nil {
		return err
	}

	s, err := common.OpenStorage(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	v, err := s.ArrayGet(idx)
	if err != nil {
		return err
	}

	cmd.Println(v)

	return nil
}
