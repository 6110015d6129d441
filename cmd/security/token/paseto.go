package token

import (
	"encoding/base64"
	"strings"
	"time"

	"minisocial/cmd/internal/ids"

	paseto "aidanwoods.dev/go-paseto"
)

const (
	pasetoV4PublicHeader = "v4.public."
	ed25519SigSize       = 64
)

type pasetoV4PublicManager struct {
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration

	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

// NewPasetoV4PublicManager builds a Manager on PASETO v4.public (Ed25519).
func NewPasetoV4PublicManager(cfg Config) (Manager, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromHex(cfg.PasetoV4SecretKeyHex)
	if err != nil {
		return nil, ErrConfig
	}

	return &pasetoV4PublicManager{
		issuer:    cfg.Issuer,
		ttl:       cfg.TTL,
		clockSkew: cfg.ClockSkew,
		secret:    secret,
		public:    secret.Public(),
	}, nil
}

func (m *pasetoV4PublicManager) Issue(userID string, now time.Time) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, ErrInvalidClaims
	}
	// Both formats carry whole seconds; exp must match what Verify will read.
	now = now.Truncate(time.Second)
	jti, err := ids.New(now)
	if err != nil {
		return "", time.Time{}, err
	}
	exp := now.Add(m.ttl)

	tok := paseto.NewToken()
	tok.SetIssuer(m.issuer)
	tok.SetSubject(userID)
	tok.SetJti(jti)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(exp)

	return tok.V4Sign(m.secret, nil), exp, nil
}

func (m *pasetoV4PublicManager) Verify(raw string, now time.Time) (Claims, error) {
	if !wellFormedV4Public(raw) {
		return Claims{}, ErrMalformed
	}

	// No parser rules: expiry and issuer are checked below so each failure keeps its own reason.
	p := paseto.MakeParser(nil)
	parsed, err := p.ParseV4Public(m.public, raw, nil)
	if err != nil {
		return Claims{}, ErrBadSignature
	}

	exp, err := parsed.GetExpiration()
	if err != nil {
		return Claims{}, ErrInvalidClaims
	}
	if !now.Before(exp.Add(m.clockSkew)) {
		return Claims{}, ErrExpired
	}
	if nbf, err := parsed.GetNotBefore(); err == nil && now.Add(m.clockSkew).Before(nbf) {
		return Claims{}, ErrInvalidClaims
	}

	iss, err := parsed.GetIssuer()
	if err != nil || iss != m.issuer {
		return Claims{}, ErrInvalidClaims
	}
	sub, err := parsed.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, ErrInvalidClaims
	}

	jti, _ := parsed.GetJti()
	iat, _ := parsed.GetIssuedAt()

	return Claims{
		UserID:    sub,
		TokenID:   jti,
		Issuer:    iss,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

// wellFormedV4Public checks the token envelope: header, base64url payload
// long enough to hold a signature, optional footer.
func wellFormedV4Public(raw string) bool {
	body, ok := strings.CutPrefix(raw, pasetoV4PublicHeader)
	if !ok || body == "" {
		return false
	}
	payload, footer, hasFooter := strings.Cut(body, ".")
	if hasFooter {
		if footer == "" || strings.Contains(footer, ".") {
			return false
		}
		if _, err := base64.RawURLEncoding.DecodeString(footer); err != nil {
			return false
		}
	}
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	return len(b) > ed25519SigSize
}
