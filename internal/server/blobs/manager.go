package blobs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/dmitrijs2005/lookboard/internal/logging"
)

// DefaultMaxBytes caps a single image payload.
const DefaultMaxBytes = 10 << 20

// Manager owns the image lifecycle of leaderboard entries. Its failures are
// returned wrapped in common.ErrBlob and are meant to be logged by the caller,
// never escalated: an entry without an image is still a valid entry.
type Manager struct {
	store     Store
	namespace string
	logger    logging.Logger

	// MaxBytes rejects larger payloads; zero means DefaultMaxBytes.
	MaxBytes int
}

func NewManager(store Store, namespace string, logger logging.Logger) *Manager {
	return &Manager{
		store:     store,
		namespace: strings.Trim(namespace, "/"),
		logger:    logger.With("module", "blobs"),
	}
}

// Upload stores data and returns its URL. Empty data means "no image" and
// yields ("", nil).
func (m *Manager) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	limit := m.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if len(data) > limit {
		return "", m.fail(ctx, "blob upload rejected", fmt.Errorf("payload of %d bytes exceeds %d", len(data), limit))
	}

	u, err := m.store.Upload(ctx, data, m.namespace)
	if err == nil && u == "" {
		err = errors.New("store returned no url")
	}
	if err != nil {
		return "", m.fail(ctx, "blob upload failed", err)
	}

	m.logger.Info(ctx, "blob uploaded", "url", u, "bytes", len(data))
	return u, nil
}

// UploadEncoded decodes a base64 payload, optionally given as a
// "data:<mime>;base64," URL, and uploads it.
func (m *Manager) UploadEncoded(ctx context.Context, payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", nil
	}
	data, err := DecodePayload(payload)
	if err != nil {
		return "", m.fail(ctx, "blob payload rejected", err)
	}
	return m.Upload(ctx, data)
}

// Delete removes the object behind u. An empty u is a no-op.
func (m *Manager) Delete(ctx context.Context, u string) error {
	if u == "" {
		return nil
	}
	id, err := m.ObjectID(u)
	if err != nil {
		return m.fail(ctx, "blob delete skipped", err, "url", u)
	}
	if err := m.store.Destroy(ctx, id); err != nil {
		return m.fail(ctx, "blob delete failed", err, "object_id", id)
	}
	m.logger.Info(ctx, "blob deleted", "object_id", id)
	return nil
}

// ObjectID derives the backend object id from a public URL: the last path
// segment without its extension, prefixed with the namespace.
func (m *Manager) ObjectID(u string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	base := path.Base(parsed.Path)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("no object name in %q", u)
	}
	return objectKey(m.namespace, name), nil
}

func (m *Manager) fail(ctx context.Context, msg string, err error, args ...any) error {
	m.logger.Warn(ctx, msg, append(args, "error", err)...)
	return fmt.Errorf("%s: %w: %w", msg, common.ErrBlob, err)
}

// DecodePayload accepts raw standard base64 or a data URL.
func DecodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		_, after, found := strings.Cut(payload, ",")
		if !found {
			return nil, errors.New("malformed data url")
		}
		payload = after
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}
