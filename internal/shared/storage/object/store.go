package object

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"resume-builder/internal/shared/util"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving binary objects
// such as avatars, branding logos and certificate scans.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// Presigner is implemented by stores that can hand out time-limited URLs
// so browsers transfer files without proxying through the API.
type Presigner interface {
	PresignGet(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
}

// NewKey builds "<hashed owner>/<random>_<sanitized name>".
func NewKey(ownerID, fileName string) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.HashUserKey(ownerID), randomID()+"_"+sanitized), nil
}

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// Sniff reads the head of r to detect the content type and returns a reader
// that replays it ahead of the remaining body. Parameters such as charset are
// stripped.
func Sniff(r io.Reader) (string, io.Reader, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	head := buf[:n]
	mime := mimetype.Detect(head).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mime, io.MultiReader(bytes.NewReader(head), r), nil
}

// CountingReader counts bytes read through it.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
