package offsync

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"golang.org/x/crypto/pbkdf2"
)

// codec key derivation parameters. There is no key rotation and no
// per-record key: one configured secret covers the whole store.
const (
	codecKeySize    = 32
	codecKDFRounds  = 10_000
	maxSealedExpand = 64 << 20
)

var codecKDFSalt = []byte("offsync.codec.v1")

// Codec seals payloads before they hit the store and unseals them for
// dispatch: serialize, compress, then encrypt. Compression runs before
// encryption because ciphertext is incompressible.
//
// With an empty key the encryption stage is a pass-through and sealed
// blobs are just deflate streams.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a codec from the configured secret. An empty key
// disables encryption.
func NewCodec(key string) (*Codec, error) {
	c := &Codec{}
	if key == "" {
		return c, nil
	}
	derived := pbkdf2.Key([]byte(key), codecKDFSalt, codecKDFRounds, codecKeySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("offsync: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("offsync: init gcm: %w", err)
	}
	c.aead = aead
	return c, nil
}

// Encode compresses and, if a key is configured, encrypts the payload.
func (c *Codec) Encode(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("offsync: init compressor: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("offsync: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("offsync: compress: %w", err)
	}
	compressed := buf.Bytes()

	if c.aead == nil {
		return compressed, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("offsync: nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, compressed, nil), nil
}

// Decode inverts Encode. Any stage failing to invert reports
// ErrCorruptData; callers decide whether to drop or quarantine.
func (c *Codec) Decode(blob []byte) ([]byte, error) {
	compressed := blob
	if c.aead != nil {
		ns := c.aead.NonceSize()
		if len(blob) < ns {
			return nil, fmt.Errorf("%w: sealed blob too short", ErrCorruptData)
		}
		plain, err := c.aead.Open(nil, blob[:ns], blob[ns:], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: decrypt: %v", ErrCorruptData, err)
		}
		compressed = plain
	}

	zr := flate.NewReader(bytes.NewReader(compressed))
	defer func() { _ = zr.Close() }()
	payload, err := io.ReadAll(io.LimitReader(zr, maxSealedExpand))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrCorruptData, err)
	}
	return payload, nil
}

// seal encodes the record payload in place, wiping the plaintext copy.
func (c *Codec) seal(rec *Record) error {
	sealed, err := c.Encode(rec.Payload)
	if err != nil {
		return err
	}
	rec.Sealed = sealed
	rec.Payload = nil
	return nil
}

// unseal restores the record payload from its sealed blob.
func (c *Codec) unseal(rec *Record) error {
	payload, err := c.Decode(rec.Sealed)
	if err != nil {
		return err
	}
	rec.Payload = payload
	return nil
}
