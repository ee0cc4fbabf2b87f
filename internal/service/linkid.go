package service

import (
	"crypto/md5"
	"encoding/base64"
)

// linkIDLength is the fixed length of a link identifier.
const linkIDLength = 9

// GenerateLinkID derives the short identifier for a link from its original
// URL and the owner's user ID. The derivation is deterministic: the same
// (url, owner) pair always yields the same identifier, so repeated shorten
// requests collapse onto one record. The digest is truncated, which leaves
// a small collision window across distinct pairs; the store detects it on
// insert.
func GenerateLinkID(originalURL, ownerID string) string {
	sum := md5.Sum([]byte(originalURL + ownerID))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:linkIDLength]
}
