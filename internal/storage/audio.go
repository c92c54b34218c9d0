package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var ErrNotFound = errors.New("audio file not found")

const filePrefix = "translated_"

var extensions = map[string]string{
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/wave":  ".wav",
	"audio/ogg":   ".ogg",
	"audio/flac":  ".flac",
}

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// Mirror receives a copy of every stored file.
type Mirror interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// AudioStore keeps at most one audio file per target language in a flat
// directory. Writes for one language are serialized and replace the previous
// file atomically, so readers see either the old or the new audio.
type AudioStore struct {
	dir    string
	mirror Mirror
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*AudioStore)

func WithMirror(m Mirror) Option {
	return func(s *AudioStore) { s.mirror = m }
}

// NewAudioStore creates dir if it does not exist.
func NewAudioStore(dir string, logger *zap.Logger, opts ...Option) (*AudioStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir %s: %w", dir, err)
	}
	s := &AudioStore{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *AudioStore) Dir() string { return s.dir }

// FileName is the stored name for a target language: translated_zh-CN.mp3.
func FileName(lang, contentType string) string {
	return filePrefix + lang + extensionFor(contentType)
}

func extensionFor(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(ct))]; ok {
		return ext
	}
	return ".mp3"
}

// ContentTypeOf returns the MIME type for a stored file name.
func ContentTypeOf(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// normalizeLang gives case variants of one tag (zh-cn, ZH-CN) a single spelling.
func normalizeLang(lang string) string {
	if tag, err := language.Raw.Parse(lang); err == nil {
		return tag.String()
	}
	return lang
}

func (s *AudioStore) lockFor(lang string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[lang]
	if !ok {
		l = &sync.Mutex{}
		s.locks[lang] = l
	}
	return l
}

// Save writes data as the current audio for lang and returns the file name.
// A file stored earlier for lang under another extension is removed. The
// mirror upload happens under the same lock, so the bucket ends up with the
// same audio as the directory.
func (s *AudioStore) Save(ctx context.Context, lang string, data []byte, contentType string) (string, error) {
	if lang == "" || strings.ContainsAny(lang, `/\`) || strings.Contains(lang, "..") {
		return "", fmt.Errorf("invalid language %q for audio file name", lang)
	}
	lang = normalizeLang(lang)
	name := FileName(lang, contentType)

	l := s.lockFor(lang)
	l.Lock()
	defer l.Unlock()

	if err := s.replace(name, data); err != nil {
		return "", err
	}
	s.removeStale(lang, name)

	if s.mirror != nil {
		objectURL, err := s.mirror.PutObject(ctx, name, bytes.NewReader(data), int64(len(data)), ContentTypeOf(name))
		if err != nil {
			s.logger.Warn("audio mirror upload failed", zap.String("file", name), zap.Error(err))
		} else {
			s.logger.Debug("audio mirrored", zap.String("file", name), zap.String("url", objectURL))
		}
	}
	return name, nil
}

func (s *AudioStore) replace(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp audio file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close audio file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace audio file: %w", err)
	}
	return nil
}

func (s *AudioStore) removeStale(lang, keep string) {
	for ext := range contentTypes {
		name := filePrefix + lang + ext
		if name == keep {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove stale audio", zap.String("file", name), zap.Error(err))
		}
	}
}

// path resolves a client supplied file name inside the store directory.
func (s *AudioStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) ||
		strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, name), nil
}

// Read returns the bytes and MIME type of a stored file.
func (s *AudioStore) Read(name string) ([]byte, string, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("read audio file: %w", err)
	}
	return data, ContentTypeOf(name), nil
}
