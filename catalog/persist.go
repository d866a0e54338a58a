package catalog

import (
	"compress/flate"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/signalsfoundry/orbit-tracker/tle"
)

// DiskCache persists one keyed slot per catalog source so a restart can
// start from the last accepted data instead of an empty store. Slots are
// msgpack-encoded and flate-compressed.
type DiskCache struct {
	dir string
}

// NewDiskCache returns a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

type persistedRecord struct {
	Name  string `msgpack:"name"`
	Line1 string `msgpack:"line1"`
	Line2 string `msgpack:"line2"`
}

type persistedCatalog struct {
	Data      []persistedRecord `msgpack:"data"`
	Timestamp int64             `msgpack:"timestamp"` // epoch millis
	Source    string            `msgpack:"source"`
}

// Store writes the catalog into its source's slot.
func (dc *DiskCache) Store(c Cached) error {
	slot := persistedCatalog{
		Data:      make([]persistedRecord, len(c.Records)),
		Timestamp: c.AcquiredAt.UnixMilli(),
		Source:    c.Source,
	}
	for i, rec := range c.Records {
		slot.Data[i] = persistedRecord{Name: rec.Name, Line1: rec.Line1, Line2: rec.Line2}
	}

	f, err := os.Create(dc.path(c.Source))
	if err != nil {
		return err
	}
	defer f.Close()

	fw, err := flate.NewWriter(f, flate.BestSpeed)
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(fw).Encode(slot); err != nil {
		return err
	}
	return fw.Close()
}

// Load reads the slot for sourceURL. A missing slot returns ok=false with
// a nil error; an unreadable or undecodable slot returns an error, which
// the store treats as cache-absent.
func (dc *DiskCache) Load(sourceURL string) (Cached, bool, error) {
	f, err := os.Open(dc.path(sourceURL))
	if err != nil {
		if os.IsNotExist(err) {
			return Cached{}, false, nil
		}
		return Cached{}, false, err
	}
	defer f.Close()

	fr := flate.NewReader(f)
	defer fr.Close()

	var slot persistedCatalog
	if err := msgpack.NewDecoder(fr).Decode(&slot); err != nil {
		return Cached{}, false, fmt.Errorf("decode cache slot: %w", err)
	}

	records := make([]tle.ElementRecord, len(slot.Data))
	for i, pr := range slot.Data {
		records[i] = tle.ElementRecord{Name: pr.Name, Line1: pr.Line1, Line2: pr.Line2}
	}
	return Cached{
		Records:    records,
		AcquiredAt: time.UnixMilli(slot.Timestamp),
		Source:     slot.Source,
	}, true, nil
}

// path maps a source URL onto a stable filename inside the cache dir.
func (dc *DiskCache) path(sourceURL string) string {
	h := fnv.New64a()
	h.Write([]byte(sourceURL))
	return filepath.Join(dc.dir, fmt.Sprintf("catalog-%016x.bin", h.Sum64()))
}
