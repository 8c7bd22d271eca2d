package linear

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/Determinant/cordwood/pkg/local_object_storage/durable"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// PageSize is a unit of caching and dirty tracking.
const PageSize = 4096

// ErrOutOfRange is returned for accesses crossing the end of the address space.
var ErrOutOfRange = errors.New("access beyond address space")

// Space is a linear byte address space laid over fixed-size files of a
// storage directory. Byte at offset off lives in the file with identifier
// off / fileSize at position off % fileSize.
//
// Writes go to in-memory pages which stay dirty until FlushDirty. Space is
// not safe for concurrent use.
type Space struct {
	*cfg

	dir   *durable.Dir
	files map[uint64]*durable.File

	clean *lru.Cache[uint64, []byte]
	dirty map[uint64][]byte
}

// New creates Space over the files of dir. Files are opened on first access
// and created if missing.
func New(dir *durable.Dir, opts ...Option) (*Space, error) {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	if c.fileSize == 0 || c.fileSize%PageSize != 0 {
		return nil, fmt.Errorf("file size %d is not a positive multiple of page size %d", c.fileSize, PageSize)
	}

	clean, err := lru.New[uint64, []byte](c.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create page cache: %w", err)
	}

	return &Space{
		cfg:   c,
		dir:   dir,
		files: make(map[uint64]*durable.File),
		clean: clean,
		dirty: make(map[uint64][]byte),
	}, nil
}

func checkRange(off uint64, n int) error {
	if uint64(n) > math.MaxUint64-off {
		return fmt.Errorf("%w: offset %d, length %d", ErrOutOfRange, off, n)
	}
	return nil
}

// Read fills p with the bytes starting at off. Never written bytes read as zeros.
func (s *Space) Read(off uint64, p []byte) error {
	if err := checkRange(off, len(p)); err != nil {
		return err
	}

	for len(p) > 0 {
		pg, err := s.page(off / PageSize)
		if err != nil {
			return err
		}

		n := copy(p, pg[off%PageSize:])
		p = p[n:]
		off += uint64(n)
	}

	return nil
}

// Write copies p into the space at off. Touched pages become dirty.
func (s *Space) Write(off uint64, p []byte) error {
	if err := checkRange(off, len(p)); err != nil {
		return err
	}

	for len(p) > 0 {
		pn := off / PageSize

		pg, err := s.page(pn)
		if err != nil {
			return err
		}

		if _, ok := s.dirty[pn]; !ok {
			s.clean.Remove(pn)
			s.dirty[pn] = pg
		}

		n := copy(pg[off%PageSize:], p)
		p = p[n:]
		off += uint64(n)
	}

	return nil
}

// DirtyPages returns the number of pages written since the last flush.
func (s *Space) DirtyPages() int {
	return len(s.dirty)
}

// FlushDirty writes all dirty pages to their files and syncs them.
// Returns false if there was nothing to flush. On error dirty pages are kept
// and the flush can be retried.
func (s *Space) FlushDirty() (bool, error) {
	if len(s.dirty) == 0 {
		return false, nil
	}

	perFile := make(map[uint64][]uint64)
	for pn := range s.dirty {
		fid := pn * PageSize / s.fileSize
		perFile[fid] = append(perFile[fid], pn)
	}

	var (
		wg       sync.WaitGroup
		errMtx   sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		errMtx.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMtx.Unlock()
	}

	touched := make([]*durable.File, 0, len(perFile))

	for fid, pages := range perFile {
		f, err := s.file(fid)
		if err != nil {
			setErr(err)
			break
		}
		touched = append(touched, f)

		wg.Add(1)
		err = s.flushPool.Submit(func() {
			defer wg.Done()
			if err := s.writePages(f, pages); err != nil {
				setErr(err)
			}
		})
		if err != nil {
			wg.Done()
			setErr(fmt.Errorf("could not submit flush of %s: %w", f.Name(), err))
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return false, firstErr
	}

	if !s.noSync {
		for _, f := range touched {
			f.Sync()
		}
	}

	s.log.Debug("flushed dirty pages",
		zap.Int("pages", len(s.dirty)),
		zap.Int("files", len(touched)),
	)

	for pn, pg := range s.dirty {
		s.clean.Add(pn, pg)
	}
	clear(s.dirty)

	return true, nil
}

func (s *Space) writePages(f *durable.File, pages []uint64) error {
	slices.Sort(pages)

	for _, pn := range pages {
		pg := s.dirty[pn]
		off := int64(pn * PageSize % s.fileSize)

		n, err := unix.Pwrite(f.FD(), pg, off)
		if err != nil {
			return fmt.Errorf("write page %d to %s: %w", pn, f.Name(), err)
		}
		if n != len(pg) {
			return fmt.Errorf("write page %d to %s: incomplete write (%d of %d)", pn, f.Name(), n, len(pg))
		}
	}

	return nil
}

func (s *Space) page(pn uint64) ([]byte, error) {
	if pg, ok := s.dirty[pn]; ok {
		return pg, nil
	}
	if pg, ok := s.clean.Get(pn); ok {
		return pg, nil
	}

	f, err := s.file(pn * PageSize / s.fileSize)
	if err != nil {
		return nil, err
	}

	pg := make([]byte, PageSize)
	off := int64(pn * PageSize % s.fileSize)

	// short read means the file is shorter than expected, missing tail reads as zeros
	_, err = unix.Pread(f.FD(), pg, off)
	if err != nil {
		return nil, fmt.Errorf("read page %d from %s: %w", pn, f.Name(), err)
	}

	s.clean.Add(pn, pg)

	return pg, nil
}

func (s *Space) file(fid uint64) (*durable.File, error) {
	if f, ok := s.files[fid]; ok {
		return f, nil
	}

	f, err := durable.OpenFile(fid, s.fileSize, s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", durable.FileName(fid), err)
	}

	s.log.Debug("opened backing file",
		zap.String("name", f.Name()),
		zap.Uint64("size", s.fileSize),
	)

	s.files[fid] = f

	return f, nil
}

// Files returns the backing files opened so far ordered by identifier.
func (s *Space) Files() []*durable.File {
	res := make([]*durable.File, 0, len(s.files))
	for _, f := range s.files {
		res = append(res, f)
	}

	slices.SortFunc(res, func(a, b *durable.File) int {
		return cmp.Compare(a.ID(), b.ID())
	})

	return res
}

// Close closes all backing files. Dirty pages are dropped.
func (s *Space) Close() error {
	var err error

	for fid, f := range s.files {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("could not close %s: %w", f.Name(), cErr)
		}
		delete(s.files, fid)
	}

	clear(s.dirty)
	s.clean.Purge()

	return err
}
