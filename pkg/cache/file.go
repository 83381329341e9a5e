package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// entryExt is the extension of entry files inside a FileCache directory.
const entryExt = ".entry"

// headerLen is the size of the expiry header in front of each entry: the
// expiry as big-endian Unix nanoseconds, zero for entries that never expire.
const headerLen = 8

// FileCache stores one file per entry under dir, sharded by the first byte
// of the key hash. Writes go to a temporary file that is renamed into place,
// so concurrent readers never see a partial entry.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates dir if needed and returns a cache rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Get implements Cache. Expired and truncated entries are removed and
// reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(raw) < headerLen {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if exp := int64(binary.BigEndian.Uint64(raw[:headerLen])); exp != 0 && c.now().UnixNano() > exp {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[headerLen:], true, nil
}

// Set implements Cache.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = c.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, headerLen+len(data))
	binary.BigEndian.PutUint64(buf, uint64(exp))
	copy(buf[headerLen:], data)

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete implements Cache.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Dir returns the cache's root directory.
func (c *FileCache) Dir() string { return c.dir }

// Clear deletes every entry and the shard directories that held them, and
// returns how many entries were deleted. A missing root is an empty cache.
func (c *FileCache) Clear() (int, error) {
	removed := 0
	var shards []string
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case errors.Is(err, fs.ErrNotExist) && path == c.dir:
			return fs.SkipAll
		case err != nil:
			return err
		case d.IsDir():
			if path != c.dir {
				shards = append(shards, path)
			}
			return nil
		case strings.HasSuffix(d.Name(), entryExt):
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	for _, s := range shards {
		_ = os.Remove(s)
	}
	return removed, err
}

// Usage reports how many entries a FileCache holds and their size on disk.
type Usage struct {
	Entries int
	Bytes   int64
}

// Usage walks the cache directory. Expired entries that were never read are
// still counted.
func (c *FileCache) Usage() (Usage, error) {
	var u Usage
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), entryExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		u.Entries++
		u.Bytes += info.Size()
		return nil
	})
	return u, err
}

// Close implements Cache.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

var _ Cache = (*FileCache)(nil)
