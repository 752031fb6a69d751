package serialization

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot mirrors the shape session stores persist: a variable blob
// plus resume bookkeeping.
type snapshot struct {
	SessionID string         `json:"session_id" msgpack:"session_id"`
	NodeID    string         `json:"node_id" msgpack:"node_id"`
	Vars      map[string]any `json:"vars" msgpack:"vars"`
}

func sample() snapshot {
	return snapshot{
		SessionID: "sess-1",
		NodeID:    "question-color",
		Vars:      map[string]any{"name": "Ana", "color": "red", "visits": int64(3)},
	}
}

func TestCodecs(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgPackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			encoded, err := codec.Encode(sample())
			require.NoError(t, err)
			assert.NotEmpty(t, encoded)

			var decoded snapshot
			require.NoError(t, codec.Decode(encoded, &decoded))
			assert.Equal(t, "sess-1", decoded.SessionID)
			assert.Equal(t, "red", decoded.Vars["color"])
		})
	}
}

func TestSerializer_Compression(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionGzip, CompressionZstd} {
		t.Run(string(compression), func(t *testing.T) {
			s := NewSerializer(Options{Codec: MsgPackCodec{}, Compression: compression})

			data, err := s.Marshal(sample())
			require.NoError(t, err)

			var out snapshot
			require.NoError(t, s.Unmarshal(data, &out))
			assert.Equal(t, "question-color", out.NodeID)
			assert.Equal(t, "Ana", out.Vars["name"])
		})
	}
}

func TestSerializer_Encryption(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	s := NewSerializer(Options{Codec: JSONCodec{}, EncryptKey: key})

	data, err := s.Marshal(sample())
	require.NoError(t, err)
	// Ciphertext must not leak the plaintext fields.
	assert.NotContains(t, string(data), "sess-1")
	assert.NotContains(t, string(data), "red")

	var out snapshot
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, "red", out.Vars["color"])
}

func TestSerializer_Errors(t *testing.T) {
	t.Run("invalid key size", func(t *testing.T) {
		s := NewSerializer(Options{Codec: JSONCodec{}, EncryptKey: []byte("short")})
		_, err := s.Marshal(sample())
		assert.ErrorContains(t, err, "encrypt")
	})

	t.Run("corrupted ciphertext", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)
		s := NewSerializer(Options{Codec: JSONCodec{}, EncryptKey: key})

		var out snapshot
		assert.ErrorContains(t, s.Unmarshal([]byte("not ciphertext"), &out), "decrypt")
	})
}

func TestDefault(t *testing.T) {
	s := Default()
	data, err := s.Marshal(sample())
	require.NoError(t, err)

	var out snapshot
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, "sess-1", out.SessionID)
}
