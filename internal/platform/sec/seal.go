// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24

	// kdfSalt domain-separates the derived key; the secret itself provides the entropy.
	kdfSalt = "askly.session.v1"
)

// ErrUnseal is returned when a sealed value is malformed or was sealed with another secret.
var ErrUnseal = errors.New("sec: value cannot be unsealed")

// Sealer encrypts short values with NaCl secretbox under a key derived from a passphrase.
type Sealer struct {
	key [keySize]byte
}

// NewSealer derives a sealing key from secret using argon2id.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("sec: sealing secret cannot be empty")
	}

	derived := argon2.IDKey([]byte(secret), []byte(kdfSalt), 1, 64*1024, 4, keySize)

	sealer := &Sealer{}
	copy(sealer.key[:], derived)
	return sealer, nil
}

// Seal encrypts plaintext and returns a base64 string safe for any text store.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("sec: failed to generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawStdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by [Sealer.Seal].
func (s *Sealer) Open(sealed string) (string, error) {
	box, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrUnseal
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plaintext, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnseal
	}
	return string(plaintext), nil
}
