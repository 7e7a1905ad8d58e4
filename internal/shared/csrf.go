package shared

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
)

const (
	// CSRFSessionKey is the session value holding the issued token.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the hidden form field carrying the token.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token for fetch and JSON requests.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFManager issues one token per session and checks it on unsafe methods.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager keyed by secret.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// Token returns the session's token, issuing one on first use.
func (m *CSRFManager) Token(sess *Session) (string, error) {
	if sess == nil {
		return "", ErrCSRFTokenMissing
	}
	if token := sess.Get(CSRFSessionKey); token != "" {
		return token, nil
	}
	nonce := make([]byte, 18)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write(nonce)
	token := base64.RawURLEncoding.EncodeToString(append(nonce, mac.Sum(nil)[:12]...))
	sess.Set(CSRFSessionKey, token)
	return token, nil
}

// Verify compares token with the one stored in sess.
func (m *CSRFManager) Verify(sess *Session, token string) error {
	if sess == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	expected := sess.Get(CSRFSessionKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

// CSRFTokenFromRequest reads the token from the form field, then the header.
func CSRFTokenFromRequest(r *http.Request) string {
	if token := r.PostFormValue(CSRFFormField); token != "" {
		return token
	}
	return r.Header.Get(CSRFHeader)
}

// SafeMethod reports whether method skips CSRF verification.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
