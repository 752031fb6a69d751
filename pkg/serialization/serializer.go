// Package serialization encodes session snapshots for the persistent
// session stores. A pluggable codec (JSON or MessagePack) is wrapped
// with optional compression and AES-GCM encryption, so stores can
// keep variable blobs compact and, when configured, opaque at rest.
package serialization

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec is the innermost encoding layer.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// Compression selects the optional compression layer.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Options configures the serialization pipeline. EncryptKey, when
// set, must be a 32-byte AES-256 key.
type Options struct {
	Codec       Codec
	Compression Compression
	EncryptKey  []byte
}

// Serializer runs encode -> compress -> encrypt on the way out and
// the reverse on the way in.
type Serializer struct {
	opts Options
}

// NewSerializer creates a serializer from options. A nil codec
// defaults to MessagePack.
func NewSerializer(opts Options) *Serializer {
	if opts.Codec == nil {
		opts.Codec = MsgPackCodec{}
	}
	return &Serializer{opts: opts}
}

// Default returns the store default: MessagePack with zstd
// compression, no encryption.
func Default() *Serializer {
	return NewSerializer(Options{Codec: MsgPackCodec{}, Compression: CompressionZstd})
}

// Marshal serializes v through the configured pipeline.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	data, err := s.opts.Codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", s.opts.Codec.Name(), err)
	}
	if data, err = s.compress(data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if len(s.opts.EncryptKey) > 0 {
		if data, err = s.encrypt(data); err != nil {
			return nil, fmt.Errorf("encrypt: %w", err)
		}
	}
	return data, nil
}

// Unmarshal deserializes data through the configured pipeline into v.
func (s *Serializer) Unmarshal(data []byte, v any) error {
	var err error
	if len(s.opts.EncryptKey) > 0 {
		if data, err = s.decrypt(data); err != nil {
			return fmt.Errorf("decrypt: %w", err)
		}
	}
	if data, err = s.decompress(data); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if err = s.opts.Codec.Decode(data, v); err != nil {
		return fmt.Errorf("%s decode: %w", s.opts.Codec.Name(), err)
	}
	return nil
}

func (s *Serializer) compress(data []byte) ([]byte, error) {
	switch s.opts.Compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func (s *Serializer) decompress(data []byte) ([]byte, error) {
	switch s.opts.Compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

func (s *Serializer) encrypt(data []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func (s *Serializer) decrypt(data []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (s *Serializer) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.opts.EncryptKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// JSONCodec encodes with encoding/json. Useful when blobs should
// stay inspectable in the database.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                    { return "json" }

// MsgPackCodec encodes with MessagePack, the compact store default.
type MsgPackCodec struct{}

func (MsgPackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (MsgPackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (MsgPackCodec) Name() string                    { return "msgpack" }
