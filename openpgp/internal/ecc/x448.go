// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"crypto/subtle"
	"io"

	"github.com/blag/PGPy/openpgp/errors"
	x448lib "github.com/cloudflare/circl/dh/x448"
)

type x448 struct{}

func NewX448() *x448 {
	return &x448{}
}

func (c *x448) GetCurveName() string {
	return "x448"
}

// MarshalBytePoint encodes the public point from native format, adding the
// 0x40 prefix required by RFC 6637 for this curve.
func (c *x448) MarshalBytePoint(point []byte) []byte {
	return append([]byte{0x40}, point...)
}

// UnmarshalBytePoint decodes a point from prefixed format to native.
func (c *x448) UnmarshalBytePoint(point []byte) ([]byte, error) {
	if len(point) != x448lib.Size+1 || point[0] != 0x40 {
		return nil, errors.KeyInvalidError("ecc: invalid x448 public point")
	}

	return point[1:], nil
}

// MarshalByteSecret reverses the secret scalar, as OpenPGP transmits it
// big-endian while the X448 functions are little-endian.
func (c *x448) MarshalByteSecret(d []byte) []byte {
	out := make([]byte, x448lib.Size)
	copyReversed(out, d)
	return out
}

// UnmarshalByteSecret decodes the secret scalar from the encoding as used by
// OpenPGP, re-adding the stripped leading zeroes.
func (c *x448) UnmarshalByteSecret(d []byte) []byte {
	if len(d) > x448lib.Size {
		return nil
	}

	secret := make([]byte, x448lib.Size)
	copyReversed(secret, d)

	return secret
}

func (c *x448) generateKeyPairBytes(rand io.Reader) (priv, pub x448lib.Key, err error) {
	_, err = io.ReadFull(rand, priv[:])
	if err != nil {
		return
	}

	x448lib.KeyGen(&pub, &priv)
	return
}

func (c *x448) GenerateECDH(rand io.Reader) (point []byte, secret []byte, err error) {
	priv, pub, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return
	}

	return pub[:], priv[:], nil
}

func (c *x448) Encaps(rand io.Reader, point []byte) (ephemeral, sharedSecret []byte, err error) {
	ephemeralPrivate, ephemeralPublic, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return nil, nil, err
	}

	var pubKey, sharedPoint x448lib.Key
	copy(pubKey[:], point)

	x448lib.Shared(&sharedPoint, &ephemeralPrivate, &pubKey)

	return ephemeralPublic[:], sharedPoint[:], nil
}

func (c *x448) Decaps(ephemeralPoint, secret []byte) (sharedSecret []byte, err error) {
	var ephemeralPublic, decodedPrivate, sharedPoint x448lib.Key
	copy(ephemeralPublic[:], ephemeralPoint)
	copy(decodedPrivate[:], secret)

	x448lib.Shared(&sharedPoint, &decodedPrivate, &ephemeralPublic)

	return sharedPoint[:], nil
}

func (c *x448) ValidateECDH(point []byte, secret []byte) (err error) {
	var pk, sk x448lib.Key
	copy(sk[:], secret)
	x448lib.KeyGen(&pk, &sk)

	if subtle.ConstantTimeCompare(point, pk[:]) == 0 {
		return errors.KeyInvalidError("ecc: invalid x448 public point")
	}

	return nil
}
