package georec

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/andreyvit/georec/mmap"
	"github.com/cespare/xxhash/v2"
)

// File format:
//
//   - file = fileHeader arena
//   - fileHeader = magic:64 version:32 reserved:32 used:64 checksum:64 reserved:64*4
//
// checksum is the xxhash64 of the first used bytes of the arena. Only sealed
// records are ever covered by used, so a record being built when the
// process dies is simply lost.
const (
	fileMagic      = 0x3176434552454f47 // "GEORECv1" as little-endian uint64
	fileVersion    = 1
	fileHeaderSize = 64

	DefaultInitialFileSize = 16 * 1024 * 1024
)

type FileOptions struct {
	Writable bool

	// InitialSize is the arena capacity of a newly created file.
	InitialSize int

	// Prefault asks the OS to load the whole file into memory up front.
	Prefault bool

	Logger *slog.Logger
}

type fileBacking struct {
	f      *os.File
	region *mmap.Region
	logger *slog.Logger
}

// OpenFile opens or, if opt.Writable is set, creates a file-backed arena.
// The checksum and the record chain of an existing file are verified; a
// mismatch is reported as a *DataError wrapping ErrCorrupted.
func OpenFile(path string, opt FileOptions) (*Arena, error) {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.InitialSize <= 0 {
		opt.InitialSize = DefaultInitialFileSize
	}
	flag := os.O_RDONLY
	mopt := mmap.RandomAccess
	if opt.Writable {
		flag = os.O_RDWR | os.O_CREATE
		mopt = mmap.Writable
	}
	if opt.Prefault {
		mopt |= mmap.Prefault
	}

	f, err := os.OpenFile(path, flag, 0o666)
	if err != nil {
		return nil, err
	}
	a, err := openFile(f, mopt, opt)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("georec: %s: %w", path, err)
	}
	return a, nil
}

func openFile(f *os.File, mopt mmap.Options, opt FileOptions) (*Arena, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()

	fresh := size == 0
	if fresh {
		if !mopt.Has(mmap.Writable) {
			return nil, fmt.Errorf("empty file: %w", ErrCorrupted)
		}
		size = int64(fileHeaderSize + opt.InitialSize)
	} else if size < fileHeaderSize {
		return nil, fmt.Errorf("file of %d bytes is shorter than its header: %w", size, ErrCorrupted)
	}
	if size > mmap.MaxSize {
		return nil, mmap.ErrTooLarge
	}

	region, err := mmap.Map(f, int(size), mopt)
	if err != nil {
		return nil, err
	}
	data := region.Data()

	var used int
	if fresh {
		putFileHeader(data, 0, xxhash.Sum64(nil))
	} else {
		used, err = checkFileHeader(data)
		if err != nil {
			region.Close()
			return nil, err
		}
	}

	buf := data[fileHeaderSize : fileHeaderSize+used]
	if !region.Writable() {
		// no spare capacity, so any append goes through grow and fails
		buf = buf[:used:used]
	}
	a := &Arena{
		buf:     buf,
		open:    -1,
		backing: &fileBacking{f: f, region: region, logger: opt.Logger},
		logger:  opt.Logger,
	}
	if err := a.Validate(); err != nil {
		region.Close()
		return nil, err
	}
	opt.Logger.Debug("georec: opened arena file", "file", f.Name(), "used", used, "size", size, "writable", region.Writable())
	return a, nil
}

func checkFileHeader(data []byte) (int, error) {
	if m := binary.LittleEndian.Uint64(data[0:8]); m != fileMagic {
		return 0, dataErrf(data[:fileHeaderSize], 0, ErrCorrupted, "bad magic %x", m)
	}
	if v := binary.LittleEndian.Uint32(data[8:12]); v != fileVersion {
		return 0, dataErrf(data[:fileHeaderSize], 8, ErrCorrupted, "unsupported version %d", v)
	}
	used := binary.LittleEndian.Uint64(data[16:24])
	if used > uint64(len(data)-fileHeaderSize) {
		return 0, dataErrf(data[:fileHeaderSize], 16, ErrCorrupted, "used size %d exceeds file", used)
	}
	sum := binary.LittleEndian.Uint64(data[24:32])
	arena := data[fileHeaderSize : fileHeaderSize+int(used)]
	if actual := xxhash.Sum64(arena); actual != sum {
		return 0, dataErrf(arena, 0, ErrCorrupted, "checksum mismatch: stored %016x, actual %016x", sum, actual)
	}
	return int(used), nil
}

func putFileHeader(data []byte, used int, sum uint64) {
	hdr := data[:fileHeaderSize]
	clear(hdr)
	binary.LittleEndian.PutUint64(hdr[0:8], fileMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], fileVersion)
	binary.LittleEndian.PutUint64(hdr[16:24], uint64(used))
	binary.LittleEndian.PutUint64(hdr[24:32], sum)
}

func (fb *fileBacking) grow(buf []byte, minCap int) ([]byte, error) {
	if !fb.region.Writable() {
		return nil, ErrReadOnly
	}
	newCap := 2 * cap(buf)
	if newCap < minCap {
		newCap = minCap
	}
	if err := fb.region.Grow(fileHeaderSize + newCap); err != nil {
		data := fb.region.Data()
		if data == nil {
			return nil, err
		}
		return data[fileHeaderSize : fileHeaderSize+len(buf)], err
	}
	fb.logger.Debug("georec: grew arena file", "file", fb.f.Name(), "cap", newCap)
	data := fb.region.Data()[fileHeaderSize:]
	return data[:len(buf)], nil
}

func (fb *fileBacking) sync(used []byte) error {
	if !fb.region.Writable() {
		return nil
	}
	putFileHeader(fb.region.Data(), len(used), xxhash.Sum64(used))
	return fb.region.Sync()
}

func (fb *fileBacking) close(used []byte) error {
	err := fb.sync(used)
	if cerr := fb.region.Close(); err == nil {
		err = cerr
	}
	if cerr := fb.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (fb *fileBacking) abandon() {
	fb.region.Close()
	fb.f.Close()
}
