package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ciphertext, nonce, err := Encrypt("ya29.oauth-access-token")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("ya29.oauth-access-token"), ciphertext)

	plaintext, err := Decrypt(ciphertext, nonce)
	require.NoError(t, err)
	assert.Equal(t, "ya29.oauth-access-token", plaintext)
}

func TestDecrypt_RejectsTamperedCiphertext(t *testing.T) {
	ciphertext, nonce, err := Encrypt("secret")
	require.NoError(t, err)

	ciphertext[0] ^= 0xff
	_, err = Decrypt(ciphertext, nonce)
	assert.Error(t, err)
}

func TestSetKey_LengthGate(t *testing.T) {
	assert.Error(t, SetKey([]byte("too-short")))
	assert.NoError(t, SetKey([]byte("0123456789abcdef")))
	assert.NoError(t, SetKey([]byte("32-byte-key-for-aes-encryption!!")))
}
