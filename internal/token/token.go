// Package token encodes and verifies the signed JWT forms of credentials and
// presentations.
//
// A credential token carries the issuer's claims about a subject under the
// `vc` claim; a presentation token bundles credential tokens under the `vp`
// claim with a bounded expiry. Both are EdDSA-signed JWS with a
// `kid: did#fragment` header naming the signing key inside the signer's DID
// document. Verification is a pure function of the token and the resolved
// document.
package token

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

// Signer is the signing capability the codec depends on. The key vault
// satisfies it; tests use an in-memory implementation. The codec never sees
// private key material.
type Signer interface {
	Sign(ctx context.Context, handle string, data []byte) ([]byte, error)
}

type vcPayload struct {
	Type              []string       `json:"type"`
	CredentialSubject map[string]any `json:"credentialSubject"`
}

type vpPayload struct {
	Type                 []string `json:"type"`
	VerifiableCredential []string `json:"verifiableCredential"`
}

type credentialClaims struct {
	VC vcPayload `json:"vc"`
	jwt.RegisteredClaims
}

type presentationClaims struct {
	VP vpPayload `json:"vp"`
	jwt.RegisteredClaims
}

// EncodeCredential signs a credential under the issuer's key and returns the
// compact token. The token carries no expiry; the presentation layer owns the
// validity window.
func EncodeCredential(ctx context.Context, signer Signer, issuer domain.ActorIdentity, cred domain.Credential, now time.Time) (string, error) {
	subject := make(map[string]any, len(cred.Subject.Claims)+1)
	for k, v := range cred.Subject.Claims {
		subject[k] = v
	}
	subject["id"] = cred.Subject.ID.String()

	claims := credentialClaims{
		VC: vcPayload{
			Type:              []string{"VerifiableCredential", cred.Type},
			CredentialSubject: subject,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cred.Issuer.String(),
			Subject:  cred.Subject.ID.String(),
			IssuedAt: jwt.NewNumericDate(now),
			ID:       "urn:uuid:" + uuid.NewString(),
		},
	}

	return sign(ctx, signer, issuer, claims)
}

// EncodePresentation signs a presentation under the holder's key.
func EncodePresentation(ctx context.Context, signer Signer, holder domain.ActorIdentity, pres domain.Presentation, now time.Time) (string, error) {
	claims := presentationClaims{
		VP: vpPayload{
			Type:                 []string{"VerifiablePresentation"},
			VerifiableCredential: pres.CredentialTokens,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    pres.Holder.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(pres.ExpiresAt),
			ID:        "urn:uuid:" + uuid.NewString(),
		},
	}

	return sign(ctx, signer, holder, claims)
}

// sign builds the JWS signing input and delegates the raw signature to the
// vault, then assembles the compact form itself. golang-jwt's SignedString
// wants the private key in-process, which the vault never hands out.
func sign(ctx context.Context, signer Signer, actor domain.ActorIdentity, claims jwt.Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tok.Header["kid"] = actor.KeyURL()

	signingInput, err := tok.SigningString()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "build token signing input")
	}

	sig, err := signer.Sign(ctx, actor.Fragment, []byte(signingInput))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeVault, "sign token")
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// ExtractHolder reads the claimed holder DID from a presentation token
// without verifying the signature. Purely syntactic: callers must still
// verify the token against the holder's resolved document.
func ExtractHolder(vpToken string) (id.DID, error) {
	var claims presentationClaims
	if err := parseUnverified(vpToken, &claims); err != nil {
		return "", err
	}
	if claims.Issuer == "" {
		return "", dErrors.New(dErrors.CodeSignatureInvalid, "presentation token has no holder")
	}
	return id.DID(claims.Issuer), nil
}

// ExtractIssuer reads the claimed issuer DID from a credential token without
// verifying the signature.
func ExtractIssuer(vcToken string) (id.DID, error) {
	var claims credentialClaims
	if err := parseUnverified(vcToken, &claims); err != nil {
		return "", err
	}
	if claims.Issuer == "" {
		return "", dErrors.New(dErrors.CodeSignatureInvalid, "credential token has no issuer")
	}
	return id.DID(claims.Issuer), nil
}

func parseUnverified(token string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return dErrors.Wrap(err, dErrors.CodeSignatureInvalid, "malformed token")
	}
	return nil
}

// VerifyPresentation checks the presentation token's signature against the
// holder's document and its expiry against now. Signature is checked before
// claims, so an expired token with a bad signature still reports the
// signature failure.
func VerifyPresentation(vpToken string, holderDoc domain.Document, now time.Time) (domain.Presentation, error) {
	var claims presentationClaims
	if err := verify(vpToken, holderDoc, now, &claims); err != nil {
		return domain.Presentation{}, err
	}
	if claims.ExpiresAt == nil {
		return domain.Presentation{}, dErrors.New(dErrors.CodeExpiredPresentation, "presentation token has no expiry")
	}
	return domain.Presentation{
		Holder:           id.DID(claims.Issuer),
		CredentialTokens: claims.VP.VerifiableCredential,
		ExpiresAt:        claims.ExpiresAt.Time,
	}, nil
}

// VerifyCredential checks a credential token's signature against the issuer's
// resolved document and returns the decoded credential.
func VerifyCredential(vcToken string, issuerDoc domain.Document, now time.Time) (domain.Credential, error) {
	var claims credentialClaims
	if err := verify(vcToken, issuerDoc, now, &claims); err != nil {
		return domain.Credential{}, err
	}

	subject := domain.Subject{Claims: make(map[string]any)}
	for k, v := range claims.VC.CredentialSubject {
		if k == "id" {
			if s, ok := v.(string); ok {
				subject.ID = id.DID(s)
			}
			continue
		}
		subject.Claims[k] = v
	}
	if subject.ID.IsZero() {
		subject.ID = id.DID(claims.Subject)
	}

	credType := domain.CredentialType
	for _, t := range claims.VC.Type {
		if t != "VerifiableCredential" {
			credType = t
		}
	}

	return domain.Credential{
		Issuer:  id.DID(claims.Issuer),
		Subject: subject,
		Type:    credType,
	}, nil
}

func verify(token string, doc domain.Document, now time.Time, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	parsed, err := parser.ParseWithClaims(token, claims, documentKeyfunc(doc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.Wrap(err, dErrors.CodeExpiredPresentation, "token expired")
		}
		return dErrors.Wrap(err, dErrors.CodeSignatureInvalid, "token signature verification failed")
	}
	if !parsed.Valid {
		return dErrors.New(dErrors.CodeSignatureInvalid, "token signature verification failed")
	}

	// The signing key must belong to the claimed signer: a valid signature
	// under someone else's key is still impersonation.
	iss, _ := parsed.Claims.GetIssuer()
	kid, _ := parsed.Header["kid"].(string)
	kidDID, _ := id.SplitKeyURL(kid)
	if iss == "" || kidDID != id.DID(iss) {
		return dErrors.New(dErrors.CodeSignatureInvalid, "token signed by a key outside the signer's document")
	}

	return nil
}

// documentKeyfunc resolves the token's kid to a public key within the given
// DID document.
func documentKeyfunc(doc domain.Document) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token has no kid header")
		}
		kidDID, fragment := id.SplitKeyURL(kid)
		if kidDID != doc.ID {
			return nil, errors.New("kid does not match the resolved document")
		}
		method, ok := doc.Method(fragment)
		if !ok {
			return nil, errors.New("verification method not found in document")
		}
		return method.PublicKey()
	}
}
