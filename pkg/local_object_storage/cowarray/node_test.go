package cowarray_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/Determinant/cordwood/pkg/local_object_storage/cowarray"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"github.com/stretchr/testify/require"
)

// rawMemory serves decoder reads from a byte slice.
type rawMemory []byte

func (m rawMemory) View(off, n uint64) ([]byte, error) {
	if off > uint64(len(m)) || n > uint64(len(m))-off {
		return nil, fmt.Errorf("span [%d, %d+%d) is out of memory of %d bytes", off, off, n, len(m))
	}
	return m[off : off+n], nil
}

func encode(n cowarray.Node) []byte {
	b := make([]byte, n.EncodedLen())
	n.Encode(b)
	return b
}

func TestNodeEncoding(t *testing.T) {
	t.Run("root", func(t *testing.T) {
		n := &cowarray.RootNode{Target: 0x0102030405060708}
		require.EqualValues(t, 9, n.EncodedLen())

		b := encode(n)
		require.Equal(t, []byte{0x00, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, b)

		res, err := cowarray.Decode(0, rawMemory(b))
		require.NoError(t, err)
		require.Equal(t, n, res)
	})

	t.Run("array", func(t *testing.T) {
		for _, values := range [][]uint64{
			{},
			{0},
			{1, math.MaxUint64, 42},
		} {
			n := &cowarray.ArrayNode{Values: values}
			require.EqualValues(t, 9+8*len(values), n.EncodedLen())

			b := encode(n)
			require.EqualValues(t, 0x01, b[0])
			require.EqualValues(t, len(values), binary.LittleEndian.Uint64(b[1:]))

			// decoding must respect the address
			mem := append(make([]byte, 48), b...)

			res, err := cowarray.Decode(48, rawMemory(mem))
			require.NoError(t, err)
			require.Equal(t, n, res)
		}
	})

	t.Run("buffer mismatch", func(t *testing.T) {
		require.Panics(t, func() { (&cowarray.RootNode{}).Encode(make([]byte, 8)) })
		require.Panics(t, func() { (&cowarray.RootNode{}).Encode(make([]byte, 10)) })
		require.Panics(t, func() {
			(&cowarray.ArrayNode{Values: []uint64{1}}).Encode(make([]byte, 9))
		})
	})
}

func TestDecode_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		mem  []byte
	}{
		{name: "empty", mem: nil},
		{name: "short header", mem: []byte{0x00, 1, 2, 3}},
		{name: "unknown tag", mem: []byte{0x02, 0, 0, 0, 0, 0, 0, 0, 0}},
		{name: "missing elements", mem: []byte{0x01, 2, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}},
		{name: "length overflow", mem: []byte{0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cowarray.Decode(0, rawMemory(tc.mem))
			require.ErrorIs(t, err, objstore.ErrDecode)
		})
	}
}
