package weapi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/listenx/internal/shared"
)

const knownEncSecKey = "6c7a1a02e9e5701ecbfd9658c8c0ae1419caf2bc30f7b1cb0218868a3aee5c0ead4dadf5bdb9984915c7d01966bda228e3e8621f85001d9fbe249988ff561a4d1d63feba2200e8fc3b22cc75bdf02cbf1f200ca303b3e115652a54f853d7346b582b0a743ef8316faf30d1c48f328533e571506debb90e22da53e7acd591e5d9"

func TestEncryptRSA(t *testing.T) {
	t.Run("known key", func(t *testing.T) {
		got, err := EncryptRSA("6fe1baacb9a0a6fa", PublicKey, Modulus)
		require.NoError(t, err)
		assert.Equal(t, knownEncSecKey, got)
	})

	t.Run("always 256 hex characters", func(t *testing.T) {
		src := rand.New(rand.NewSource(7))
		for range 50 {
			got, err := EncryptRSA(SecretKey(src, KeySize), PublicKey, Modulus)
			require.NoError(t, err)
			require.Len(t, got, 256)
			_, err = hex.DecodeString(got)
			require.NoError(t, err)
		}
	})

	t.Run("bytes are rendered without zero padding", func(t *testing.T) {
		// "\x01\x02" reversed is 02 01 which reads as hex "21", not "0201".
		got, err := EncryptRSA("\x01\x02", "1", "ffff")
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("0", 254)+"21", got)
	})

	t.Run("malformed constants", func(t *testing.T) {
		_, err := EncryptRSA("abc", PublicKey, "zz")
		var cerr *shared.CryptoError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "rsa modulus", cerr.Op)

		_, err = EncryptRSA("abc", "xyz", Modulus)
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "rsa exponent", cerr.Op)
	})
}

func TestEncryptWithKey(t *testing.T) {
	payload := []byte(`{"id":26467411,"offset":0,"total":true,"limit":1000,"n":1000,"csrf_token":""}`)
	key := "6fe1baacb9a0a6fa"

	t.Run("deterministic for a fixed key", func(t *testing.T) {
		a, err := EncryptWithKey(payload, key)
		require.NoError(t, err)
		b, err := EncryptWithKey(payload, key)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, knownEncSecKey, a.EncSecKey)
	})

	t.Run("round trip", func(t *testing.T) {
		form, err := EncryptWithKey(payload, key)
		require.NoError(t, err)

		inner, err := Decrypt(form.Params, key)
		require.NoError(t, err)

		plain, err := Decrypt(string(inner), PresetKey)
		require.NoError(t, err)
		assert.Equal(t, payload, plain)
	})

	t.Run("block aligned payload", func(t *testing.T) {
		block := []byte("0123456789abcdef")
		form, err := EncryptWithKey(block, key)
		require.NoError(t, err)
		inner, err := Decrypt(form.Params, key)
		require.NoError(t, err)
		plain, err := Decrypt(string(inner), PresetKey)
		require.NoError(t, err)
		assert.Equal(t, block, plain)
	})

	t.Run("wrong key length", func(t *testing.T) {
		_, err := EncryptWithKey(payload, "short")
		var cerr *shared.CryptoError
		require.True(t, errors.As(err, &cerr))
	})

	t.Run("decrypt with the wrong key fails or differs", func(t *testing.T) {
		form, err := EncryptWithKey(payload, key)
		require.NoError(t, err)
		inner, err := Decrypt(form.Params, "0000000000000000")
		if err == nil {
			assert.NotEqual(t, payload, inner)
		}
	})
}

func TestEncrypt(t *testing.T) {
	t.Run("same seed same form", func(t *testing.T) {
		a, err := Encrypt([]byte("Hello, world!"), rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		b, err := Encrypt([]byte("Hello, world!"), rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.NotEmpty(t, a.Params)
		assert.Len(t, a.EncSecKey, 256)
	})

	t.Run("crypto source", func(t *testing.T) {
		form, err := Encrypt([]byte("Hello, world!"), NewSource())
		require.NoError(t, err)
		assert.Len(t, form.EncSecKey, 256)
	})

	t.Run("EncryptJSON", func(t *testing.T) {
		src := rand.New(rand.NewSource(1))
		key := SecretKey(rand.New(rand.NewSource(1)), KeySize)

		form, err := EncryptJSON(map[string]any{"ids": "1,2"}, src)
		require.NoError(t, err)

		inner, err := Decrypt(form.Params, key)
		require.NoError(t, err)
		plain, err := Decrypt(string(inner), PresetKey)
		require.NoError(t, err)

		var got map[string]string
		require.NoError(t, json.Unmarshal(plain, &got))
		assert.Equal(t, "1,2", got["ids"])
	})

	t.Run("form values", func(t *testing.T) {
		form := Form{Params: "p", EncSecKey: "k"}
		v := form.Values()
		assert.Len(t, v, 2)
		assert.Equal(t, "p", v.Get("params"))
		assert.Equal(t, "k", v.Get("encSecKey"))
	})
}

func TestSecretKey(t *testing.T) {
	src := rand.New(rand.NewSource(99))
	for range 200 {
		key := SecretKey(src, KeySize)
		require.Len(t, key, KeySize)
		require.NotContains(t, key, "8")
		for _, r := range key {
			require.Contains(t, Alphabet, string(r))
		}
	}

	assert.Len(t, SecretKey(nil, 32), 32)
}

func TestDecrypt(t *testing.T) {
	_, err := Decrypt("not base64!", PresetKey)
	require.Error(t, err)

	_, err = Decrypt("AAAA", PresetKey)
	require.Error(t, err)
}
