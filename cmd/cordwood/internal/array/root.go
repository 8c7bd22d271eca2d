package array

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Root contains `array` command definition.
var Root = &cobra.Command{
	Use:   "array",
	Short: "Operations with the stored array",
}

func init() {
	Root.AddCommand(
		setCMD,
		getCMD,
		dumpCMD,
	)
}

func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}
