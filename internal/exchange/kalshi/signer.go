package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kalshitrader/pkg/logger"
)

const (
	HeaderAccessKey       = "KALSHI-ACCESS-KEY"
	HeaderAccessTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderAccessSignature = "KALSHI-ACCESS-SIGNATURE"
)

// Signer 使用 RSA-PSS 对请求签名，私钥只读，可并发使用
type Signer struct {
	keyID string
	key   *rsa.PrivateKey
	now   func() time.Time
}

// NewSigner 私钥无法解析时返回未签名的 Signer，请求会被交易所以 401 拒绝
func NewSigner(keyID, keyMaterial string) *Signer {
	s := &Signer{keyID: keyID, now: time.Now}
	if strings.TrimSpace(keyMaterial) == "" {
		return s
	}
	key, err := LoadPrivateKey(keyMaterial)
	if err != nil {
		logger.Warn("kalshi private key could not be loaded, requests will be unsigned", logger.Err(err))
		return s
	}
	s.key = key
	return s
}

// NewSignerWithKey 直接使用已解析的私钥
func NewSignerWithKey(keyID string, key *rsa.PrivateKey) *Signer {
	return &Signer{keyID: keyID, key: key, now: time.Now}
}

func (s *Signer) Signed() bool {
	return s != nil && s.key != nil
}

func (s *Signer) KeyID() string {
	return s.keyID
}

// LoadPrivateKey 支持 PEM 文本或 base64 编码的 PEM，依次尝试 PKCS#1 和 PKCS#8
func LoadPrivateKey(material string) (*rsa.PrivateKey, error) {
	data := []byte(strings.TrimSpace(material))
	if !strings.HasPrefix(string(data), "-----") {
		decoded, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("private key is neither PEM nor base64: %w", err)
		}
		data = decoded
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("private key: no PEM block found")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("private key: parse PKCS#1/PKCS#8: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key: expected RSA key, got %T", parsed)
	}
	return key, nil
}

// Message 拼接待签名字符串：毫秒时间戳 + 大写方法 + 不含查询参数的路径 + 请求体
func Message(ts, method, path, body string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return ts + strings.ToUpper(method) + path + body
}

// SignMessage 返回 base64 编码的 RSA-PSS(SHA-256) 签名，盐长度取最大值
func (s *Signer) SignMessage(ts, method, path, body string) (string, error) {
	if !s.Signed() {
		return "", errors.New("signer has no private key")
	}
	digest := sha256.Sum256([]byte(Message(ts, method, path, body)))
	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return "", fmt.Errorf("sign request: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Headers 生成鉴权请求头，未签名时返回空头
func (s *Signer) Headers(method, path, body string) http.Header {
	h := http.Header{}
	if !s.Signed() {
		return h
	}
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)
	sig, err := s.SignMessage(ts, method, path, body)
	if err != nil {
		logger.Warn("kalshi request signing failed", logger.Pair("path", path), logger.Err(err))
		return h
	}
	h.Set(HeaderAccessKey, s.keyID)
	h.Set(HeaderAccessTimestamp, ts)
	h.Set(HeaderAccessSignature, sig)
	return h
}
