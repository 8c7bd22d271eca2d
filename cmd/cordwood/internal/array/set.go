package array

import (
	"errors"

	common "github.com/Determinant/cordwood/cmd/cordwood/internal"
	"github.com/spf13/cobra"
)

var setCMD = &cobra.Command{
	Use:   "set <index> <value>",
	Short: "Set array element and commit",
	Long: `Set array element and commit the change.
Setting an index beyond the end extends the array with zeros.`,
	Args: cobra.ExactArgs(2),
	RunE: setFunc,
}

func setFunc(cmd *cobra.Command, args []string) (err error) {
	idx, err := parseUint("index", args[0])
	if err != nil {
		return err
	}

	value, err := parseUint("value", args[1])
	if err != nil {
		return err
	}

	s, err := common.OpenStorage(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	if err := s.ArraySet(idx, value); err != nil {
		return err
	}

	return s.Commit()
}
