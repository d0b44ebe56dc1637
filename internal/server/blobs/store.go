// Package blobs stores entry images in an external object store and manages
// their lifecycle on behalf of the leaderboard.
package blobs

import (
	"context"
	"net/http"
	"path"
	"strings"
)

// Store is the object storage backend.
type Store interface {
	// Upload stores data under namespace and returns its public URL.
	Upload(ctx context.Context, data []byte, namespace string) (string, error)
	// Destroy removes the object with the given id ("namespace/name").
	Destroy(ctx context.Context, objectID string) error
}

// objectKey names an object inside namespace. An empty namespace yields the
// bare name. Stores and Manager.ObjectID must agree on this shape.
func objectKey(namespace, name string) string {
	return path.Join(namespace, name)
}

// contentType sniffs the payload, defaulting to application/octet-stream.
func contentType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}
