package objstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	storagelog "github.com/Determinant/cordwood/pkg/local_object_storage/internal/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Space is a linear byte memory the store lays objects out in.
type Space interface {
	Read(off uint64, p []byte) error
	Write(off uint64, p []byte) error
	FlushDirty() (bool, error)
}

const (
	// HeaderSize is a size of the store header at the beginning of the space.
	HeaderSize = 32

	// ChunkHeaderSize is a size of the header preceding every object.
	ChunkHeaderSize = 16

	// MinPayload is the smallest space allocated for an object.
	MinPayload = 16

	magic uint64 = 0x646f6f7764726f63 // "cordwood"

	flagFree byte = 1

	storageType = "compact"

	maxObjectSize = math.MaxUint64 / 2
)

type header struct {
	tail     uint64
	freeHead Address
	count    uint64
}

// Compact is a Store laid out in a single linear Space. Objects are
// allocated from a first-fit free list of released chunks or from the end of
// the used space. Compact is not safe for concurrent use.
//
// Layout: 32-byte store header (magic, tail, free list head, object count)
// followed by chunks. Every chunk has a 16-byte header (payload size, flags)
// and the object address points to its payload. Freed chunks keep the
// address of the next free chunk in the first 8 bytes of the payload.
type Compact[T Item] struct {
	*cfg

	space  Space
	decode Decoder[T]

	hdr header

	cache *lru.Cache[Address, T]
}

// New opens the store kept in space. Blank space is initialized.
func New[T Item](space Space, decode Decoder[T], opts ...Option) (*Compact[T], error) {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	cache, err := lru.New[Address, T](c.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create object cache: %w", err)
	}

	s := &Compact[T]{
		cfg:    c,
		space:  space,
		decode: decode,
		cache:  cache,
	}

	if err := s.loadHeader(); err != nil {
		return nil, err
	}

	s.metrics.SetUsedSpace(s.hdr.tail)
	s.metrics.SetObjectCount(s.hdr.count)

	return s, nil
}

func (s *Compact[T]) loadHeader() error {
	var raw [HeaderSize]byte

	if err := s.space.Read(0, raw[:]); err != nil {
		return fmt.Errorf("could not read store header: %w", err)
	}

	if raw == [HeaderSize]byte{} {
		s.log.Debug("initializing blank store")

		s.hdr = header{tail: HeaderSize}
		return s.writeHeader()
	}

	if m := binary.LittleEndian.Uint64(raw[0:]); m != magic {
		return fmt.Errorf("%w: invalid magic %#x", ErrCorrupted, m)
	}

	s.hdr = header{
		tail:     binary.LittleEndian.Uint64(raw[8:]),
		freeHead: Address(binary.LittleEndian.Uint64(raw[16:])),
		count:    binary.LittleEndian.Uint64(raw[24:]),
	}

	if s.hdr.tail < HeaderSize {
		return fmt.Errorf("%w: invalid tail %d", ErrCorrupted, s.hdr.tail)
	}

	s.log.Debug("store header loaded",
		zap.Uint64("tail", s.hdr.tail),
		zap.Uint64("objects", s.hdr.count),
	)

	return nil
}

func (s *Compact[T]) writeHeader() error {
	var raw [HeaderSize]byte

	binary.LittleEndian.PutUint64(raw[0:], magic)
	binary.LittleEndian.PutUint64(raw[8:], s.hdr.tail)
	binary.LittleEndian.PutUint64(raw[16:], uint64(s.hdr.freeHead))
	binary.LittleEndian.PutUint64(raw[24:], s.hdr.count)

	if err := s.space.Write(0, raw[:]); err != nil {
		return fmt.Errorf("could not write store header: %w", err)
	}

	s.metrics.SetUsedSpace(s.hdr.tail)
	s.metrics.SetObjectCount(s.hdr.count)

	return nil
}

func (s *Compact[T]) readChunk(addr Address) (uint64, byte, error) {
	var raw [ChunkHeaderSize]byte

	if err := s.space.Read(uint64(addr)-ChunkHeaderSize, raw[:]); err != nil {
		return 0, 0, fmt.Errorf("could not read chunk header of %d: %w", addr, err)
	}

	return binary.LittleEndian.Uint64(raw[:]), raw[8], nil
}

func (s *Compact[T]) writeChunk(addr Address, size uint64, flags byte) error {
	var raw [ChunkHeaderSize]byte

	binary.LittleEndian.PutUint64(raw[:], size)
	raw[8] = flags

	if err := s.space.Write(uint64(addr)-ChunkHeaderSize, raw[:]); err != nil {
		return fmt.Errorf("could not write chunk header of %d: %w", addr, err)
	}

	return nil
}

func (s *Compact[T]) readNext(addr Address) (Address, error) {
	var raw [8]byte

	if err := s.space.Read(uint64(addr), raw[:]); err != nil {
		return Null, fmt.Errorf("could not read free list link of %d: %w", addr, err)
	}

	return Address(binary.LittleEndian.Uint64(raw[:])), nil
}

func (s *Compact[T]) writeNext(addr Address, next Address) error {
	var raw [8]byte

	binary.LittleEndian.PutUint64(raw[:], uint64(next))

	if err := s.space.Write(uint64(addr), raw[:]); err != nil {
		return fmt.Errorf("could not write free list link of %d: %w", addr, err)
	}

	return nil
}

// chunk checks that addr points to a live object and returns its payload size.
func (s *Compact[T]) chunk(addr Address) (uint64, error) {
	if addr < HeaderSize+ChunkHeaderSize || uint64(addr) >= s.hdr.tail {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAddress, addr)
	}

	size, flags, err := s.readChunk(addr)
	if err != nil {
		return 0, err
	}

	if flags&flagFree != 0 {
		return 0, fmt.Errorf("%w: %d", ErrFreed, addr)
	}

	if size > s.hdr.tail-uint64(addr) {
		return 0, fmt.Errorf("%w: chunk %d of size %d crosses the tail", ErrCorrupted, addr, size)
	}

	return size, nil
}

func payloadSize(n uint64) uint64 {
	n = max(n, MinPayload)
	return (n + 7) &^ 7
}

func (s *Compact[T]) alloc(n uint64) (Address, error) {
	if n > maxObjectSize {
		return Null, fmt.Errorf("%w: object of %d bytes", ErrNoSpace, n)
	}

	need := payloadSize(n)

	var prev Address

	for cur := s.hdr.freeHead; cur != Null; {
		size, _, err := s.readChunk(cur)
		if err != nil {
			return Null, err
		}

		next, err := s.readNext(cur)
		if err != nil {
			return Null, err
		}

		if size < need {
			prev, cur = cur, next
			continue
		}

		if size-need >= ChunkHeaderSize+MinPayload {
			rest := cur + Address(need+ChunkHeaderSize)

			if err := s.writeChunk(rest, size-need-ChunkHeaderSize, flagFree); err != nil {
				return Null, err
			}
			if err := s.writeNext(rest, next); err != nil {
				return Null, err
			}

			next, size = rest, need
		}

		if prev == Null {
			s.hdr.freeHead = next
		} else if err := s.writeNext(prev, next); err != nil {
			return Null, err
		}

		if err := s.writeChunk(cur, size, 0); err != nil {
			return Null, err
		}

		return cur, nil
	}

	addr := s.hdr.tail + ChunkHeaderSize
	end := addr + need

	if s.capacity > 0 && end > s.capacity {
		return Null, fmt.Errorf("%w: object of %d bytes, %d of %d used",
			ErrNoSpace, n, s.hdr.tail, s.capacity)
	}

	if err := s.writeChunk(Address(addr), need, 0); err != nil {
		return Null, err
	}

	s.hdr.tail = end

	return Address(addr), nil
}

// Put implements Store. Allocated chunk is released if the object can not be
// written.
func (s *Compact[T]) Put(item T) (*Ref[T], error) {
	defer s.observe("put", time.Now())

	n := item.EncodedLen()

	addr, err := s.alloc(n)
	if err != nil {
		return nil, err
	}

	if err := s.store(addr, item, n); err != nil {
		s.rollback(addr)
		return nil, err
	}

	s.hdr.count++
	if err := s.writeHeader(); err != nil {
		s.hdr.count--
		s.cache.Remove(addr)
		s.rollback(addr)
		return nil, err
	}

	storagelog.Write(s.log,
		storagelog.AddressField(uint64(addr)),
		storagelog.OpField("PUT"),
		storagelog.StorageTypeField(storageType),
		storagelog.SizeField(n),
	)

	return NewRef(addr, item, s.write), nil
}

// rollback returns the chunk allocated for a failed Put to the free list.
func (s *Compact[T]) rollback(addr Address) {
	err := s.release(addr)
	if err == nil {
		err = s.writeHeader()
	}
	if err != nil {
		s.log.Warn("could not release chunk of failed write",
			zap.Uint64("address", uint64(addr)),
			zap.Error(err))
	}
}

// release flags the chunk free and pushes it on the free list. The header is
// not persisted.
func (s *Compact[T]) release(addr Address) error {
	size, _, err := s.readChunk(addr)
	if err != nil {
		return err
	}

	if err := s.writeChunk(addr, size, flagFree); err != nil {
		return err
	}
	if err := s.writeNext(addr, s.hdr.freeHead); err != nil {
		return err
	}

	s.hdr.freeHead = addr

	return nil
}

func (s *Compact[T]) store(addr Address, item T, n uint64) error {
	buf := make([]byte, n)
	item.Encode(buf)

	if err := s.space.Write(uint64(addr), buf); err != nil {
		s.cache.Remove(addr)
		return fmt.Errorf("could not write object %d: %w", addr, err)
	}

	s.cache.Add(addr, item)

	return nil
}

func (s *Compact[T]) write(addr Address, item T) error {
	defer s.observe("write", time.Now())

	size, err := s.chunk(addr)
	if err != nil {
		s.cache.Remove(addr)
		return err
	}

	n := item.EncodedLen()
	if n > size {
		s.cache.Remove(addr)
		return fmt.Errorf("%w: %d bytes into %d at %d", ErrSizeMismatch, n, size, addr)
	}

	return s.store(addr, item, n)
}

// Get implements Store.
func (s *Compact[T]) Get(addr Address) (*Ref[T], error) {
	defer s.observe("get", time.Now())

	size, err := s.chunk(addr)
	if err != nil {
		return nil, err
	}

	if item, ok := s.cache.Get(addr); ok {
		return NewRef(addr, item, s.write), nil
	}

	item, err := s.decode(addr, chunkMemory{
		space: s.space,
		start: uint64(addr),
		end:   uint64(addr) + size,
	})
	if err != nil {
		return nil, fmt.Errorf("could not decode object %d: %w", addr, err)
	}

	s.cache.Add(addr, item)

	return NewRef(addr, item, s.write), nil
}

// Free implements Store.
func (s *Compact[T]) Free(addr Address) error {
	defer s.observe("free", time.Now())

	size, err := s.chunk(addr)
	if err != nil {
		return err
	}

	s.cache.Remove(addr)

	if err := s.release(addr); err != nil {
		return err
	}

	s.hdr.count--

	if err := s.writeHeader(); err != nil {
		return err
	}

	storagelog.Write(s.log,
		storagelog.AddressField(uint64(addr)),
		storagelog.OpField("FREE"),
		storagelog.StorageTypeField(storageType),
		storagelog.SizeField(size),
	)

	return nil
}

// FlushDirty implements Store.
func (s *Compact[T]) FlushDirty() (bool, error) {
	defer s.observe("flush", time.Now())

	return s.space.FlushDirty()
}

// MaxItemSize implements Limiter. It is the payload of a single chunk taking
// the whole capacity.
func (s *Compact[T]) MaxItemSize() uint64 {
	if s.capacity == 0 {
		return maxObjectSize
	}

	if s.capacity < HeaderSize+ChunkHeaderSize {
		return 0
	}

	return s.capacity - HeaderSize - ChunkHeaderSize
}

// UsedSpace returns the size of the space occupied by the store including
// freed chunks.
func (s *Compact[T]) UsedSpace() uint64 {
	return s.hdr.tail
}

// Count returns the number of live objects.
func (s *Compact[T]) Count() uint64 {
	return s.hdr.count
}

func (s *Compact[T]) observe(method string, start time.Time) {
	s.metrics.AddMethodDuration(method, time.Since(start))
}

// chunkMemory limits decoder reads to a single chunk.
type chunkMemory struct {
	space      Space
	start, end uint64
}

func (m chunkMemory) View(off, n uint64) ([]byte, error) {
	if off < m.start || off > m.end || n > m.end-off {
		return nil, fmt.Errorf("span [%d, %d+%d) is out of object bounds [%d, %d)", off, off, n, m.start, m.end)
	}

	buf := make([]byte, n)
	if err := m.space.Read(off, buf); err != nil {
		return nil, err
	}

	return buf, nil
}
