package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func pkcs1PEM(key *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
}

func pkcs8PEM(t *testing.T, key *rsa.PrivateKey) string {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func verify(t *testing.T, pub *rsa.PublicKey, msg, sigB64 string) error {
	t.Helper()
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	require.NoError(t, err)
	digest := sha256.Sum256([]byte(msg))
	return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: crypto.SHA256})
}

func TestSignatureUsesMaxSaltLength(t *testing.T) {
	key := generateKey(t)
	s := NewSignerWithKey("key-id", key)

	sigB64, err := s.SignMessage("1700000000000", "GET", "/trade-api/v2/portfolio/balance", "")
	require.NoError(t, err)
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	require.NoError(t, err)

	// emLen - hLen - 2
	maxSalt := (key.N.BitLen()-1+7)/8 - sha256.Size - 2
	require.Equal(t, 222, maxSalt)
	digest := sha256.Sum256([]byte("1700000000000GET/trade-api/v2/portfolio/balance"))
	require.NoError(t, rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{SaltLength: maxSalt, Hash: crypto.SHA256}))
	assert.Error(t, rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{SaltLength: sha256.Size, Hash: crypto.SHA256}))
}

func TestMessageStripsQuery(t *testing.T) {
	msg := Message("1700000000000", "get", "/trade-api/v2/markets?series_ticker=KXBTC&status=open", "")
	assert.Equal(t, "1700000000000GET/trade-api/v2/markets", msg)

	msg = Message("1", "post", "/trade-api/v2/portfolio/orders", `{"a":1}`)
	assert.Equal(t, `1POST/trade-api/v2/portfolio/orders{"a":1}`, msg)
}

func TestSignatureVerifies(t *testing.T) {
	key := generateKey(t)
	s := NewSignerWithKey("key-id", key)

	sig, err := s.SignMessage("1700000000000", "GET", "/trade-api/v2/portfolio/balance", "")
	require.NoError(t, err)
	require.NoError(t, verify(t, &key.PublicKey, "1700000000000GET/trade-api/v2/portfolio/balance", sig))

	// 任何一处改动都会导致验签失败
	assert.Error(t, verify(t, &key.PublicKey, "1700000000001GET/trade-api/v2/portfolio/balance", sig))
	assert.Error(t, verify(t, &key.PublicKey, "1700000000000POST/trade-api/v2/portfolio/balance", sig))
}

func TestHeaders(t *testing.T) {
	key := generateKey(t)
	s := NewSignerWithKey("key-id", key)
	fixed := time.UnixMilli(1700000000123)
	s.now = func() time.Time { return fixed }

	h := s.Headers("get", "/trade-api/v2/markets?limit=20", "")
	assert.Equal(t, "key-id", h.Get(HeaderAccessKey))
	assert.Equal(t, strconv.FormatInt(fixed.UnixMilli(), 10), h.Get(HeaderAccessTimestamp))
	require.NotEmpty(t, h.Get(HeaderAccessSignature))
	require.NoError(t, verify(t, &key.PublicKey, "1700000000123GET/trade-api/v2/markets", h.Get(HeaderAccessSignature)))
}

func TestLoadPrivateKeyFormats(t *testing.T) {
	key := generateKey(t)

	for name, material := range map[string]string{
		"pkcs1":        pkcs1PEM(key),
		"pkcs8":        pkcs8PEM(t, key),
		"pkcs1 base64": base64.StdEncoding.EncodeToString([]byte(pkcs1PEM(key))),
		"pkcs8 base64": base64.StdEncoding.EncodeToString([]byte(pkcs8PEM(t, key))),
	} {
		t.Run(name, func(t *testing.T) {
			loaded, err := LoadPrivateKey(material)
			require.NoError(t, err)
			assert.True(t, key.Equal(loaded))
		})
	}
}

func TestMalformedKeyLeavesSignerUnsigned(t *testing.T) {
	s := NewSigner("key-id", "not a key at all!")
	assert.False(t, s.Signed())
	assert.Empty(t, s.Headers("GET", "/trade-api/v2/markets", ""))

	_, err := s.SignMessage("1", "GET", "/", "")
	assert.Error(t, err)

	assert.False(t, NewSigner("key-id", "").Signed())

	key := generateKey(t)
	assert.True(t, NewSigner("key-id", pkcs1PEM(key)).Signed())
}
