package cowarray

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"go.uber.org/zap"
)

// Store is an object store the array records are kept in.
type Store = objstore.Store[Node]

// Option is an option of Array's constructor.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger
}

func defaultCfg() *cfg {
	return &cfg{
		log: zap.NewNop(),
	}
}

// WithLogger returns option to specify array's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l.With(zap.String("component", "CowArray"))
	}
}

// Array provides access to the arrays kept in the store. A single Array
// serves any number of structures distinguished by their root addresses.
type Array struct {
	*cfg

	store Store
}

// New constructs Array operating over the store.
func New(store Store, opts ...Option) *Array {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	return &Array{
		cfg:   c,
		store: store,
	}
}

// Init creates an empty array in the store and returns its root address.
func Init(store Store) (objstore.Address, error) {
	arr, err := store.Put(&ArrayNode{})
	if err != nil {
		return objstore.Null, fmt.Errorf("%w: could not allocate array: %w", ErrStore, err)
	}

	root, err := store.Put(&RootNode{Target: arr.Addr()})
	if err != nil {
		return objstore.Null, fmt.Errorf("%w: could not allocate root: %w", ErrStore, err)
	}

	return root.Addr(), nil
}

// Init creates an empty array in the underlying store.
func (a *Array) Init() (objstore.Address, error) {
	root, err := Init(a.store)
	if err != nil {
		return objstore.Null, err
	}

	a.log.Debug("array created", zap.Uint64("root", uint64(root)))

	return root, nil
}

func (a *Array) root(addr objstore.Address) (*objstore.Ref[Node], *RootNode, error) {
	ref, err := a.store.Get(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not read root %d: %w", ErrStore, addr, err)
	}

	root, ok := ref.Item().(*RootNode)
	if !ok {
		return nil, nil, fmt.Errorf("%w: record %d is not a root", ErrStructure, addr)
	}

	return ref, root, nil
}

func (a *Array) array(root objstore.Address) (*objstore.Ref[Node], *ArrayNode, error) {
	_, r, err := a.root(root)
	if err != nil {
		return nil, nil, err
	}

	ref, err := a.store.Get(r.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not read array %d: %w", ErrStore, r.Target, err)
	}

	arr, ok := ref.Item().(*ArrayNode)
	if !ok {
		return nil, nil, fmt.Errorf("%w: record %d is not an array", ErrStructure, r.Target)
	}

	return ref, arr, nil
}

// Get returns the value at idx of the array with the given root.
// Returns ErrOutOfBounds if idx is not less than the array length.
func (a *Array) Get(root objstore.Address, idx uint64) (uint64, error) {
	_, arr, err := a.array(root)
	if err != nil {
		return 0, err
	}

	if idx >= uint64(len(arr.Values)) {
		return 0, fmt.Errorf("%w: %d of %d", ErrOutOfBounds, idx, len(arr.Values))
	}

	return arr.Values[idx], nil
}

// Set stores value at idx of the array with the given root. Indices within
// the array are updated in place. Otherwise the array is reallocated with the
// length of idx+1, new elements except idx are zeros. Indices starting from
// MaxLen are ErrOutOfBounds. Arrays the store can never hold are refused with
// objstore.ErrNoSpace before anything is allocated.
func (a *Array) Set(root objstore.Address, idx, value uint64) error {
	rootRef, r, err := a.root(root)
	if err != nil {
		return err
	}

	ref, err := a.store.Get(r.Target)
	if err != nil {
		return fmt.Errorf("%w: could not read array %d: %w", ErrStore, r.Target, err)
	}

	arr, ok := ref.Item().(*ArrayNode)
	if !ok {
		return fmt.Errorf("%w: record %d is not an array", ErrStructure, r.Target)
	}

	if idx < uint64(len(arr.Values)) {
		err = ref.Write(func(n Node) {
			n.(*ArrayNode).Values[idx] = value
		})
		if err != nil {
			return fmt.Errorf("%w: could not update array %d: %w", ErrStore, ref.Addr(), err)
		}

		return nil
	}

	if idx >= MaxLen {
		return fmt.Errorf("%w: index %d exceeds maximum length %d", ErrOutOfBounds, idx, MaxLen)
	}

	size := headerSize + (idx+1)*elemSize

	if l, ok := a.store.(objstore.Limiter); ok && size > l.MaxItemSize() {
		return fmt.Errorf("%w: array of %d bytes exceeds store limit %d: %w",
			ErrStore, size, l.MaxItemSize(), objstore.ErrNoSpace)
	}

	values := make([]uint64, idx+1)
	copy(values, arr.Values)
	values[idx] = value

	newRef, err := a.store.Put(&ArrayNode{Values: values})
	if err != nil {
		return fmt.Errorf("%w: could not allocate array of %d elements: %w", ErrStore, len(values), err)
	}

	old := r.Target

	err = rootRef.Write(func(n Node) {
		n.(*RootNode).Target = newRef.Addr()
	})
	if err != nil {
		if fErr := a.store.Free(newRef.Addr()); fErr != nil {
			a.log.Warn("could not free unreferenced array",
				zap.Uint64("address", uint64(newRef.Addr())),
				zap.Error(fErr))
		}
		return fmt.Errorf("%w: could not update root %d: %w", ErrStore, root, err)
	}

	if err := a.store.Free(old); err != nil {
		return fmt.Errorf("%w: could not free replaced array %d: %w", ErrStore, old, err)
	}

	a.log.Debug("array reallocated",
		zap.Uint64("root", uint64(root)),
		zap.Uint64("old", uint64(old)),
		zap.Uint64("new", uint64(newRef.Addr())),
		zap.Int("length", len(values)),
	)

	return nil
}

// MaxLen limits array length, so a single array record takes about 1 GiB at most.
// Set beyond it fails with ErrOutOfBounds.
const MaxLen = 1 << 27

// Len returns the length of the array with the given root.
func (a *Array) Len(root objstore.Address) (uint64, error) {
	_, arr, err := a.array(root)
	if err != nil {
		return 0, err
	}

	return uint64(len(arr.Values)), nil
}

// Target returns the address of the record currently holding the values of
// the array with the given root.
func (a *Array) Target(root objstore.Address) (objstore.Address, error) {
	_, r, err := a.root(root)
	if err != nil {
		return objstore.Null, err
	}

	return r.Target, nil
}

// Dump writes the array with the given root to w as "[v0, v1, ...]" line.
func (a *Array) Dump(root objstore.Address, w io.Writer) error {
	_, arr, err := a.array(root)
	if err != nil {
		return err
	}

	buf := make([]byte, 0, 2+len(arr.Values)*4)
	buf = append(buf, '[')
	for i := range arr.Values {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = strconv.AppendUint(buf, arr.Values[i], 10)
	}
	buf = append(buf, "]\n"...)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}

	return nil
}

// FlushDirty persists records modified since the last flush. Returns false
// if there was nothing to persist.
func (a *Array) FlushDirty() (bool, error) {
	flushed, err := a.store.FlushDirty()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return flushed, nil
}

// Store returns the underlying object store.
func (a *Array) Store() Store {
	return a.store
}
