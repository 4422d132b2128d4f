// Package weapi signs requests for Netease's protected "weapi" endpoint family.
//
// A payload is encrypted twice with AES-128-CBC, first with a preset key and then
// with a random 16-character session key. The session key itself is wrapped with
// textbook RSA so only the server can recover it. The result is the two-field
// form {params, encSecKey} the endpoints expect.
package weapi

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/desertthunder/listenx/internal/shared"
)

const (
	PresetKey = "0CoJUm6Qyw8W8jud"
	IV        = "0102030405060708"
	PublicKey = "010001"
	Modulus   = "00e0b509f6259df8642dbc35662901477df22677ec152b5ff68ace615bb7b725152b3ab17a876aea8a5aa76d2e417629ec4ee341f56135fccf695280104e0312ecbda92557c93870114af6c9d05c4f7f0c3685b7a46bee255932575cce10b424d813cfe4875d3e82047b97ddef52741d546b8e289dc6935b3ece0462db0a22b8e7"

	// Alphabet is the session key alphabet. The server rejects keys containing '8'.
	Alphabet = "012345679abcdef"

	KeySize    = 16
	encKeySize = 256
)

// Form is the signed request body.
type Form struct {
	Params    string `json:"params"`
	EncSecKey string `json:"encSecKey"`
}

// Values encodes the form as the POST body fields.
func (f Form) Values() url.Values {
	return url.Values{
		"params":    {f.Params},
		"encSecKey": {f.EncSecKey},
	}
}

// Encrypt signs plaintext with a session key drawn from src.
func Encrypt(plaintext []byte, src Source) (Form, error) {
	return EncryptWithKey(plaintext, SecretKey(src, KeySize))
}

// EncryptJSON marshals v and signs it with a session key drawn from src.
func EncryptJSON(v any, src Source) (Form, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Form{}, &shared.CryptoError{Op: "marshal payload", Err: err}
	}
	return Encrypt(data, src)
}

// EncryptWithKey signs plaintext with the given session key. The output is fully
// determined by plaintext and key.
func EncryptWithKey(plaintext []byte, key string) (Form, error) {
	if len(key) != KeySize {
		return Form{}, &shared.CryptoError{Op: "session key", Err: fmt.Errorf("want %d bytes, got %d", KeySize, len(key))}
	}

	inner, err := encryptCBC(plaintext, []byte(PresetKey))
	if err != nil {
		return Form{}, err
	}

	params, err := encryptCBC([]byte(inner), []byte(key))
	if err != nil {
		return Form{}, err
	}

	encSecKey, err := EncryptRSA(key, PublicKey, Modulus)
	if err != nil {
		return Form{}, err
	}

	return Form{Params: params, EncSecKey: encSecKey}, nil
}

// Decrypt reverses one AES layer: base64 decode, decrypt with key and [IV], strip padding.
func Decrypt(ciphertext, key string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, &shared.CryptoError{Op: "base64 decode", Err: err}
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return nil, &shared.CryptoError{Op: "aes decrypt", Err: fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(raw))}
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, &shared.CryptoError{Op: "aes key", Err: err}
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, []byte(IV)).CryptBlocks(out, raw)
	return unpad(out)
}

// EncryptRSA wraps text with unpadded RSA: e and n are hex strings.
//
// The byte order of text is reversed and every byte is rendered as hex without
// zero padding before the concatenation is read as one base-16 integer. The
// server decodes keys the same way, so the unpadded form must be kept.
func EncryptRSA(text, pubKey, modulus string) (string, error) {
	n, ok := new(big.Int).SetString(modulus, 16)
	if !ok {
		return "", &shared.CryptoError{Op: "rsa modulus", Err: fmt.Errorf("invalid hex")}
	}
	e, ok := new(big.Int).SetString(pubKey, 16)
	if !ok {
		return "", &shared.CryptoError{Op: "rsa exponent", Err: fmt.Errorf("invalid hex")}
	}

	raw := []byte(text)
	var digits strings.Builder
	for i := len(raw) - 1; i >= 0; i-- {
		fmt.Fprintf(&digits, "%x", raw[i])
	}

	b, ok := new(big.Int).SetString(digits.String(), 16)
	if !ok {
		return "", &shared.CryptoError{Op: "rsa input", Err: fmt.Errorf("empty or invalid text %q", text)}
	}

	out := new(big.Int).Exp(b, e, n).Text(16)
	if len(out) > encKeySize {
		return "", &shared.CryptoError{Op: "rsa output", Err: fmt.Errorf("result has %d hex digits", len(out))}
	}
	return strings.Repeat("0", encKeySize-len(out)) + out, nil
}

func encryptCBC(plaintext, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", &shared.CryptoError{Op: "aes key", Err: err}
	}

	data := pad(plaintext)
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, []byte(IV)).CryptBlocks(out, data)
	return base64.StdEncoding.EncodeToString(out), nil
}

// pad applies PKCS#7.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, &shared.CryptoError{Op: "aes unpad", Err: fmt.Errorf("invalid padding %d", n)}
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, &shared.CryptoError{Op: "aes unpad", Err: fmt.Errorf("invalid padding")}
		}
	}
	return data[:len(data)-n], nil
}
