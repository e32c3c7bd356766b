// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"crypto/subtle"
	"io"

	"github.com/blag/PGPy/openpgp/errors"
	ed448lib "github.com/cloudflare/circl/sign/ed448"
)

const ed448Size = 57

type ed448 struct{}

func NewEd448() *ed448 {
	return &ed448{}
}

func (c *ed448) GetCurveName() string {
	return "ed448"
}

// MarshalBytePoint encodes the public point from native format, adding the
// 0x40 prefix required by the OpenPGP EdDSA encoding.
func (c *ed448) MarshalBytePoint(x []byte) []byte {
	// Return prefixed
	return append([]byte{0x40}, x...)
}

// UnmarshalBytePoint decodes a point from prefixed format to native. Ed448
// points are always encoded with their full length, so no zero-padding is
// needed.
func (c *ed448) UnmarshalBytePoint(point []byte) (x []byte) {
	if len(point) != ed448Size+1 {
		return nil
	}

	// Return unprefixed
	return point[1:]
}

func (c *ed448) MarshalByteSecret(d []byte) []byte {
	return d
}

func (c *ed448) UnmarshalByteSecret(s []byte) (d []byte) {
	// Check sizes
	if len(s) > ed448Size {
		return nil
	}

	d = make([]byte, ed448Size)
	copy(d[ed448Size-len(s):], s)
	return
}

func (c *ed448) GenerateEdDSA(rand io.Reader) (pub, priv []byte, err error) {
	pk, sk, err := ed448lib.GenerateKey(rand)
	if err != nil {
		return nil, nil, err
	}

	return pk, sk[:ed448lib.SeedSize], nil
}

func getEd448Sk(publicKey, privateKey []byte) ed448lib.PrivateKey {
	return append(privateKey, publicKey...)
}

func (c *ed448) Sign(publicKey, privateKey, message []byte) (sig []byte, err error) {
	// Ed448 is used with the empty context string
	sig = ed448lib.Sign(getEd448Sk(publicKey, privateKey), message, "")
	return sig, nil
}

func (c *ed448) Verify(publicKey, message, sig []byte) bool {
	return ed448lib.Verify(publicKey, message, sig, "")
}

func (c *ed448) ValidateEdDSA(publicKey, privateKey []byte) (err error) {
	priv := getEd448Sk(publicKey, privateKey)
	expectedPriv := ed448lib.NewKeyFromSeed(priv.Seed())
	if subtle.ConstantTimeCompare(priv, expectedPriv) == 0 {
		return errors.KeyInvalidError("ecc: invalid ed448 secret")
	}
	return nil
}

// Ed448 signatures are transmitted as two MPIs of 57 bytes each.

// MarshalSignature splits a signature in R and S.
func (c *ed448) MarshalSignature(sig []byte) (r, s []byte) {
	return sig[:ed448Size], sig[ed448Size:]
}

// UnmarshalSignature rebuilds a signature from R and S, re-adding stripped
// leading zeroes.
func (c *ed448) UnmarshalSignature(r, s []byte) (sig []byte) {
	// Check sizes
	if len(r) > ed448Size || len(s) > ed448Size {
		return nil
	}

	sig = make([]byte, 2*ed448Size)
	copy(sig[ed448Size-len(r):ed448Size], r)
	copy(sig[2*ed448Size-len(s):], s)
	return sig
}
