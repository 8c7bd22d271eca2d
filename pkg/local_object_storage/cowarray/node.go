package cowarray

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
)

const (
	tagRoot  byte = 0x0
	tagArray byte = 0x1

	// headerSize is a tag byte followed by a target address or an element count.
	headerSize = 1 + 8

	elemSize = 8
)

// Node is a record of the array structure: either *RootNode or *ArrayNode.
type Node interface {
	objstore.Item

	tag() byte
}

// RootNode is a fixed-size record pointing to the current array record.
// Its address is the stable handle of the structure.
type RootNode struct {
	Target objstore.Address
}

// ArrayNode is a record holding all values of the array.
type ArrayNode struct {
	Values []uint64
}

func (*RootNode) tag() byte  { return tagRoot }
func (*ArrayNode) tag() byte { return tagArray }

// EncodedLen implements objstore.Item.
func (*RootNode) EncodedLen() uint64 {
	return headerSize
}

// EncodedLen implements objstore.Item.
func (x *ArrayNode) EncodedLen() uint64 {
	return headerSize + uint64(len(x.Values))*elemSize
}

func checkBuffer(n Node, to []byte) {
	if uint64(len(to)) != n.EncodedLen() {
		panic(fmt.Sprintf("node with tag %d needs buffer of %d bytes, got %d", n.tag(), n.EncodedLen(), len(to)))
	}
}

// Encode implements objstore.Item.
//
// Panics if len(to) differs from EncodedLen.
func (x *RootNode) Encode(to []byte) {
	checkBuffer(x, to)

	to[0] = tagRoot
	binary.LittleEndian.PutUint64(to[1:], uint64(x.Target))
}

// Encode implements objstore.Item.
//
// Panics if len(to) differs from EncodedLen.
func (x *ArrayNode) Encode(to []byte) {
	checkBuffer(x, to)

	to[0] = tagArray
	binary.LittleEndian.PutUint64(to[1:], uint64(len(x.Values)))

	to = to[headerSize:]
	for i := range x.Values {
		binary.LittleEndian.PutUint64(to[i*elemSize:], x.Values[i])
	}
}

// Decode restores the node stored at addr. It satisfies objstore.Decoder.
func Decode(addr objstore.Address, mem objstore.Memory) (Node, error) {
	hdr, err := mem.View(uint64(addr), headerSize)
	if err != nil {
		return nil, fmt.Errorf("%w: node header: %w", objstore.ErrDecode, err)
	}
	if len(hdr) != headerSize {
		return nil, fmt.Errorf("%w: node header of %d bytes", objstore.ErrDecode, len(hdr))
	}

	v := binary.LittleEndian.Uint64(hdr[1:])

	switch hdr[0] {
	case tagRoot:
		return &RootNode{Target: objstore.Address(v)}, nil
	case tagArray:
	default:
		return nil, fmt.Errorf("%w: unknown node tag %d", objstore.ErrDecode, hdr[0])
	}

	if v > math.MaxUint64/elemSize {
		return nil, fmt.Errorf("%w: too many array elements %d", objstore.ErrDecode, v)
	}

	raw, err := mem.View(uint64(addr)+headerSize, v*elemSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %d array elements: %w", objstore.ErrDecode, v, err)
	}
	if uint64(len(raw)) != v*elemSize {
		return nil, fmt.Errorf("%w: %d bytes for %d array elements", objstore.ErrDecode, len(raw), v)
	}

	values := make([]uint64, v)
	for i := range values {
		values[i] = binary.LittleEndian.Uint64(raw[i*elemSize:])
	}

	return &ArrayNode{Values: values}, nil
}
