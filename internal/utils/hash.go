package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// Signer computes HMAC-SHA256 digests of ROP request bodies with one key.
// Hashers are pooled, so a Signer is safe for concurrent use.
//
// Example usage:
//
//	s := utils.NewSigner("my-secret-key")
//	req.Header.Set("X-Body-HMAC", s.SignHex(body))
type Signer struct {
	pool sync.Pool
}

// NewSigner returns a Signer keyed with key.
func NewSigner(key string) *Signer {
	k := []byte(key)
	s := &Signer{}
	s.pool.New = func() any {
		return hmac.New(sha256.New, k)
	}
	return s
}

// Sum returns the raw digest of data.
func (s *Signer) Sum(data []byte) []byte {
	h := s.pool.Get().(hash.Hash)
	defer s.pool.Put(h)

	h.Reset()
	h.Write(data)
	return h.Sum(nil)
}

// SignHex returns the hex-encoded digest of data.
func (s *Signer) SignHex(data []byte) string {
	return hex.EncodeToString(s.Sum(data))
}

// Verify reports whether sig is the digest of data.
func (s *Signer) Verify(data, sig []byte) bool {
	return len(sig) > 0 && hmac.Equal(sig, s.Sum(data))
}

// HashString returns the hex-encoded HMAC-SHA256 of data under hashKey
// without touching any pool. Meant for one-off signatures.
//
// Example usage:
//
//	signature := utils.HashString("some data", "my-secret-key")
func HashString(data string, hashKey string) string {
	h := hmac.New(sha256.New, []byte(hashKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
