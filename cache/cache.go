// Package cache persists compiled bytecode.Program blobs by fingerprint so
// a repeat Compile of unchanged input can be served without re-running the
// generator.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/sasha-s/go-deadlock"

	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/internal/logging"
)

var log = logging.Named("cache")

// Store is a fingerprint-keyed cache of compiled programs. Its in-memory
// index is guarded by a deadlock-detecting mutex rather than sync.RWMutex,
// since a service (cmd/ramcd) may serve overlapping Compile requests
// against the same Store concurrently even though each individual
// compilation is single-threaded.
type Store struct {
	dir      string
	compress bool

	mu    deadlock.RWMutex
	index map[string]string // fingerprint -> file path, populated lazily on Get miss from disk
}

// Fingerprint returns the cache key for the given serialized RAM program
// bytes: their SHA-256 digest, hex-encoded.
func Fingerprint(ramBytes []byte) string {
	sum := sha256.Sum256(ramBytes)
	return hex.EncodeToString(sum[:])
}

// New creates a Store rooted at dir. dir is created on first Put if it
// does not already exist.
func New(dir string, compress bool) *Store {
	return &Store{
		dir:      dir,
		compress: compress,
		index:    make(map[string]string),
	}
}

func (s *Store) path(fingerprint string) string {
	name := fingerprint + ".cbor"
	if s.compress {
		name += ".zst"
	}
	return filepath.Join(s.dir, name)
}

// Get returns the cached program for fingerprint, if present.
func (s *Store) Get(fingerprint string) (*bytecode.Program, bool) {
	s.mu.RLock()
	path, known := s.index[fingerprint]
	s.mu.RUnlock()
	if !known {
		path = s.path(fingerprint)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	data := raw
	if s.compress {
		data, err = decompress(raw)
		if err != nil {
			log.Warning("cache entry %s failed to decompress: %v", fingerprint, err)
			return nil, false
		}
	}

	p, err := bytecode.UnmarshalProgram(data)
	if err != nil {
		log.Warning("cache entry %s failed to unmarshal: %v", fingerprint, err)
		return nil, false
	}

	s.mu.Lock()
	s.index[fingerprint] = path
	s.mu.Unlock()
	log.Debug("cache hit for %s", fingerprint)
	return p, true
}

// Put stores p under fingerprint, replacing any existing entry.
func (s *Store) Put(fingerprint string, p *bytecode.Program) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cache: create %s: %w", s.dir, err)
	}

	data, err := p.Marshal()
	if err != nil {
		return fmt.Errorf("cache: marshal program: %w", err)
	}
	if s.compress {
		data, err = compress(data)
		if err != nil {
			return fmt.Errorf("cache: compress program: %w", err)
		}
	}

	path := s.path(fingerprint)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", path, err)
	}

	s.mu.Lock()
	s.index[fingerprint] = path
	s.mu.Unlock()
	log.Debug("cached %s (%d bytes)", fingerprint, len(data))
	return nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
