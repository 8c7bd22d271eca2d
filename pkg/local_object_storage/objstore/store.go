package objstore

// Address is an offset of an object in the store's linear address space.
// It stays valid until the object is freed and carries no ownership.
type Address uint64

// Null is never a valid object address.
const Null Address = 0

// Item is an object kept in the store in its encoded form.
type Item interface {
	// EncodedLen returns exact number of bytes Encode writes.
	EncodedLen() uint64

	// Encode writes binary representation of the item to the buffer of
	// EncodedLen bytes.
	Encode(to []byte)
}

// Memory provides read access to the encoded objects.
type Memory interface {
	// View returns n bytes starting at off. Fails if the span
	// can not be supplied completely.
	View(off, n uint64) ([]byte, error)
}

// Decoder restores the item stored at addr.
type Decoder[T Item] func(addr Address, mem Memory) (T, error)

// Store is a set of capabilities to keep typed objects addressed by their
// stable Address.
type Store[T Item] interface {
	// Put allocates space for the item, writes it and returns a reference
	// to the stored object.
	Put(item T) (*Ref[T], error)

	// Get returns a reference to the object at addr.
	Get(addr Address) (*Ref[T], error)

	// Free releases the object at addr. The address must not be used after.
	Free(addr Address) error

	// FlushDirty persists objects modified since the last flush.
	// Returns false if there was nothing to persist.
	FlushDirty() (bool, error)
}

// Limiter is implemented by stores that can not keep items above some size.
// Callers building large items consult it before encoding them.
type Limiter interface {
	// MaxItemSize returns the largest EncodedLen the store can ever accept.
	MaxItemSize() uint64
}

// Ref is a reference to the stored object.
type Ref[T Item] struct {
	addr  Address
	item  T
	write func(Address, T) error
}

// NewRef constructs Ref. Write calls write with the modified item to store it
// at addr.
func NewRef[T Item](addr Address, item T, write func(Address, T) error) *Ref[T] {
	return &Ref[T]{
		addr:  addr,
		item:  item,
		write: write,
	}
}

// Addr returns address of the referenced object.
func (r *Ref[T]) Addr() Address {
	return r.addr
}

// Item returns the referenced object. It must not be modified except via Write.
func (r *Ref[T]) Item() T {
	return r.item
}

// Write modifies the object in place without changing its address.
// The object is persisted on the next flush of the store.
func (r *Ref[T]) Write(modify func(T)) error {
	modify(r.item)
	return r.write(r.addr, r.item)
}
