// Package blob implements content-addressed storage for chat attachments:
// images, pasted text and imported files are hashed with BLAKE3 and written
// once under their hash, so the same attachment referenced from multiple
// threads is stored only once.
package blob

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

var (
	// ErrMissingExtension is returned when the caller supplies an empty
	// (after trimming) file extension.
	ErrMissingExtension = errors.New("blob: missing extension")
	// ErrExtensionTooLong rejects pathological extensions before they end
	// up in a filename.
	ErrExtensionTooLong = errors.New("blob: extension too long")
	// ErrInvalidExtension rejects extensions containing characters outside
	// [a-z0-9_-], so a hostile filename can never escape the blobs dir.
	ErrInvalidExtension = errors.New("blob: invalid extension")
)

const maxExtensionLen = 16

// Store is a content-addressed blob store rooted at a single directory. One
// Store instance is created per workspace (see SPEC_FULL.md ​§4.1): blobs
// dir and tmp dir are always siblings so the rename in StoreBytes/StoreFile never crosses a
// filesystem boundary.
type Store struct {
	root string
}

// New returns a Store rooted at root. The blobs/ and tmp/ subdirectories
// are created lazily on first write.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) blobsDir() string { return filepath.Join(s.root, "blobs") }
func (s *Store) tmpDir() string   { return filepath.Join(s.root, "tmp") }

func normalizeExtension(ext string) (string, error) {
	trimmed := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if trimmed == "" {
		return "", ErrMissingExtension
	}
	if len(trimmed) > maxExtensionLen {
		return "", ErrExtensionTooLong
	}
	for _, ch := range trimmed {
		isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if !isAlnum && ch != '_' && ch != '-' {
			return "", ErrInvalidExtension
		}
	}
	return trimmed, nil
}

func randomSuffix() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", binary.BigEndian.Uint64(b[:]))
}

// StoredBlob describes the result of a successful StoreBytes or StoreFile.
type StoredBlob struct {
	Hash      string // BLAKE3 hex digest, the content address
	Extension string
	Path      string
	ByteLen   int64
}

// StoreBytes hashes and writes an in-memory blob, returning its content
// address. If a blob with the same hash and extension already exists, the
// existing file is reused and the write is skipped entirely.
func (s *Store) StoreBytes(data []byte, extension string) (StoredBlob, error) {
	ext, err := normalizeExtension(extension)
	if err != nil {
		return StoredBlob{}, err
	}

	sum := blake3.Sum256(data)
	hash := fmt.Sprintf("%x", sum)

	blobsDir := s.blobsDir()
	if err := os.MkdirAll(blobsDir, 0755); err != nil {
		return StoredBlob{}, fmt.Errorf("create blobs dir: %w", err)
	}
	dest := filepath.Join(blobsDir, hash+"."+ext)
	if info, err := os.Stat(dest); err == nil {
		return StoredBlob{Hash: hash, Extension: ext, Path: dest, ByteLen: info.Size()}, nil
	}

	tmpDir := s.tmpDir()
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return StoredBlob{}, fmt.Errorf("create tmp dir: %w", err)
	}
	tmp := filepath.Join(tmpDir, "import-"+randomSuffix())

	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return StoredBlob{}, fmt.Errorf("create tmp blob: %w", err)
	}
	if _, err := dst.Write(data); err != nil {
		dst.Close()
		os.Remove(tmp)
		return StoredBlob{}, fmt.Errorf("write tmp blob: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(tmp)
		return StoredBlob{}, fmt.Errorf("sync tmp blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return StoredBlob{}, fmt.Errorf("close tmp blob: %w", err)
	}

	if err := renameOrAcceptExisting(tmp, dest); err != nil {
		return StoredBlob{}, err
	}
	return StoredBlob{Hash: hash, Extension: ext, Path: dest, ByteLen: int64(len(data))}, nil
}

// StoreFile hashes and copies an existing file into the store in 64KB
// chunks, so a large import never needs the whole file resident in memory.
// The extension is taken from source's own suffix when ext is empty.
func (s *Store) StoreFile(sourcePath, ext string) (StoredBlob, error) {
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(sourcePath), ".")
		if ext == "" {
			ext = "txt"
		}
	}
	extension, err := normalizeExtension(ext)
	if err != nil {
		return StoredBlob{}, err
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return StoredBlob{}, fmt.Errorf("open source file: %w", err)
	}
	defer src.Close()

	blobsDir := s.blobsDir()
	tmpDir := s.tmpDir()
	if err := os.MkdirAll(blobsDir, 0755); err != nil {
		return StoredBlob{}, fmt.Errorf("create blobs dir: %w", err)
	}
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return StoredBlob{}, fmt.Errorf("create tmp dir: %w", err)
	}

	tmp := filepath.Join(tmpDir, "import-"+randomSuffix())
	dst, err := os.Create(tmp)
	if err != nil {
		return StoredBlob{}, fmt.Errorf("create tmp blob: %w", err)
	}

	hasher := blake3.New(32, nil)
	buf := make([]byte, 64*1024)
	var byteLen int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			byteLen += int64(n)
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				dst.Close()
				os.Remove(tmp)
				return StoredBlob{}, fmt.Errorf("write tmp blob: %w", writeErr)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			dst.Close()
			os.Remove(tmp)
			return StoredBlob{}, fmt.Errorf("read source file: %w", readErr)
		}
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(tmp)
		return StoredBlob{}, fmt.Errorf("sync tmp blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return StoredBlob{}, fmt.Errorf("close tmp blob: %w", err)
	}

	hash := fmt.Sprintf("%x", hasher.Sum(nil))
	dest := filepath.Join(blobsDir, hash+"."+extension)
	if info, err := os.Stat(dest); err == nil {
		os.Remove(tmp)
		return StoredBlob{Hash: hash, Extension: extension, Path: dest, ByteLen: info.Size()}, nil
	}

	if err := renameOrAcceptExisting(tmp, dest); err != nil {
		return StoredBlob{}, err
	}
	return StoredBlob{Hash: hash, Extension: extension, Path: dest, ByteLen: byteLen}, nil
}

// renameOrAcceptExisting renames tmp to dest, treating a losing race against
// a concurrent writer of the same content address as success: both writers
// produced byte-identical output, so whichever one's rename lands first is
// correct.
func renameOrAcceptExisting(tmp, dest string) error {
	if err := os.Rename(tmp, dest); err != nil {
		if _, statErr := os.Stat(dest); statErr == nil {
			os.Remove(tmp)
			return nil
		}
		os.Remove(tmp)
		return fmt.Errorf("move blob %s -> %s: %w", tmp, dest, err)
	}
	return nil
}
