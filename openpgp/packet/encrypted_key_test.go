// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/blag/PGPy/openpgp/ecdh"
	"github.com/blag/PGPy/openpgp/internal/algorithm"
	"github.com/blag/PGPy/openpgp/internal/ecc"
)

func TestSerializeEncryptedKeyRSA(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), rsaPriv)

	sessionKey := randomKey(CipherAES256.KeySize())

	buf := bytes.NewBuffer(nil)
	err = SerializeEncryptedKey(buf, &priv.PublicKey, CipherAES256, sessionKey, nil)
	if err != nil {
		t.Fatal(err)
	}

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	ek, ok := p.(*EncryptedKey)
	if !ok {
		t.Fatalf("didn't parse an EncryptedKey, got %#v", p)
	}
	if ek.KeyId != priv.KeyId {
		t.Errorf("key id mismatch: %x vs %x", ek.KeyId, priv.KeyId)
	}
	if ek.Algo != PubKeyAlgoRSA {
		t.Errorf("wrong algo: %v", ek.Algo)
	}

	if err := ek.Decrypt(priv, nil); err != nil {
		t.Fatal(err)
	}
	if ek.CipherFunc != CipherAES256 {
		t.Errorf("cipher mismatch: %v", ek.CipherFunc)
	}
	if !bytes.Equal(ek.Key, sessionKey) {
		t.Errorf("session key mismatch: got %x, want %x", ek.Key, sessionKey)
	}
}

func TestSerializeEncryptedKeyECDH(t *testing.T) {
	curve := ecc.FindECDHByGenName("Curve25519")
	if curve == nil {
		t.Fatal("no curve found")
	}
	kdf := ecdh.KDF{
		Hash:   algorithm.SHA512,
		Cipher: algorithm.AES256,
	}
	ecdhPriv, err := ecdh.GenerateKey(rand.Reader, curve, kdf)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewECDHPrivateKey(time.Unix(0x4d3c5c10, 0), ecdhPriv)

	sessionKey := randomKey(CipherAES128.KeySize())

	buf := bytes.NewBuffer(nil)
	err = SerializeEncryptedKey(buf, &priv.PublicKey, CipherAES128, sessionKey, nil)
	if err != nil {
		t.Fatal(err)
	}

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	ek := p.(*EncryptedKey)
	if ek.Algo != PubKeyAlgoECDH {
		t.Errorf("wrong algo: %v", ek.Algo)
	}

	if err := ek.Decrypt(priv, nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ek.Key, sessionKey) {
		t.Errorf("session key mismatch: got %x, want %x", ek.Key, sessionKey)
	}
}

func TestEncryptedKeyDecryptWrongKey(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), rsaPriv)

	buf := bytes.NewBuffer(nil)
	err = SerializeEncryptedKey(buf, &priv.PublicKey, CipherAES128, randomKey(16), nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	ek := p.(*EncryptedKey)

	otherRsa, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	other := NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), otherRsa)
	if err := ek.Decrypt(other, nil); err == nil {
		t.Fatal("decrypted with a mismatched private key")
	}
}
