// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/blag/PGPy/openpgp/s2k"
)

func TestPrivateKeyEncryptDecryptRoundTrip(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), rsaPriv)

	passphrase := []byte("testing")
	if err := priv.Encrypt(passphrase); err != nil {
		t.Fatal(err)
	}
	if !priv.Encrypted {
		t.Fatal("key not marked as encrypted")
	}

	buf := bytes.NewBuffer(nil)
	if err := priv.Serialize(buf); err != nil {
		t.Fatal(err)
	}

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed, ok := p.(*PrivateKey)
	if !ok {
		t.Fatalf("didn't parse a private key, got %#v", p)
	}
	if !parsed.Encrypted {
		t.Fatal("reparsed key is not encrypted")
	}

	if err := parsed.Decrypt([]byte("wrong passphrase")); err == nil {
		t.Fatal("decrypted with wrong passphrase")
	}
	if err := parsed.Decrypt(passphrase); err != nil {
		t.Fatalf("failed to decrypt with correct passphrase: %s", err)
	}

	// The decrypted key must produce working signatures.
	sig := &Signature{
		Version:      4,
		SigType:      SigTypeBinary,
		PubKeyAlgo:   PubKeyAlgoRSA,
		Hash:         crypto.SHA256,
		CreationTime: time.Unix(0x4d3c5c10, 0),
		IssuerKeyId:  &parsed.KeyId,
	}
	h, err := sig.PrepareSign(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("locked and unlocked"))
	if err := sig.Sign(h, parsed, nil); err != nil {
		t.Fatal(err)
	}
	vh, err := sig.PrepareVerify()
	if err != nil {
		t.Fatal(err)
	}
	vh.Write([]byte("locked and unlocked"))
	if err := priv.PublicKey.VerifySignature(vh, sig); err != nil {
		t.Errorf("signature from unlocked key rejected: %s", err)
	}
}

func TestPrivateKeyEncryptWithConfig(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), rsaPriv)

	config := &Config{
		DefaultCipher: CipherAES256,
		S2KConfig: &s2k.Config{
			S2KMode: s2k.Argon2S2K,
		},
	}
	if err := priv.EncryptWithConfig([]byte("argon2 locked"), config); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer(nil)
	if err := priv.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed := p.(*PrivateKey)
	if err := parsed.Decrypt([]byte("argon2 locked")); err != nil {
		t.Fatalf("failed to decrypt Argon2 locked key: %s", err)
	}
}

func TestGnuDummyPrivateKey(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), rsaPriv)

	// A GNU dummy key carries the public key material followed by the
	// GNU extension S2K specifier and no secret material at all.
	contents := bytes.NewBuffer(nil)
	if err := priv.PublicKey.serializeWithoutHeaders(contents); err != nil {
		t.Fatal(err)
	}
	contents.Write([]byte{254, 0, 101, 2, 'G', 'N', 'U', 1})

	buf := bytes.NewBuffer(nil)
	if err := serializeHeader(buf, packetTypePrivateKey, contents.Len()); err != nil {
		t.Fatal(err)
	}
	buf.Write(contents.Bytes())

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed, ok := p.(*PrivateKey)
	if !ok {
		t.Fatalf("didn't parse a private key, got %#v", p)
	}
	if !parsed.Dummy() {
		t.Fatal("key not detected as a dummy key")
	}
	if parsed.Encrypted {
		t.Error("dummy key reported as encrypted")
	}
	if parsed.KeyId != priv.KeyId {
		t.Errorf("key id mismatch: %x vs %x", parsed.KeyId, priv.KeyId)
	}

	// Dummy keys survive reserialization.
	out := bytes.NewBuffer(nil)
	if err := parsed.Serialize(out); err != nil {
		t.Fatal(err)
	}
	p, err = Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if !p.(*PrivateKey).Dummy() {
		t.Error("dummy flag lost in reserialization")
	}

	// Dummy keys must refuse to sign.
	sig := &Signature{
		Version:      4,
		SigType:      SigTypeBinary,
		PubKeyAlgo:   PubKeyAlgoRSA,
		Hash:         crypto.SHA256,
		CreationTime: time.Unix(0x4d3c5c10, 0),
		IssuerKeyId:  &parsed.KeyId,
	}
	h, err := sig.PrepareSign(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("data"))
	if err := sig.Sign(h, parsed, nil); err == nil {
		t.Error("dummy key produced a signature")
	}
}

func TestPrivateKeySerializeUnencrypted(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), rsaPriv)

	buf := bytes.NewBuffer(nil)
	if err := priv.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed, ok := p.(*PrivateKey)
	if !ok {
		t.Fatalf("didn't parse a private key, got %#v", p)
	}
	if parsed.Encrypted {
		t.Fatal("unencrypted key parsed as encrypted")
	}
	if parsed.KeyId != priv.KeyId {
		t.Errorf("key id mismatch: %x vs %x", parsed.KeyId, priv.KeyId)
	}
	if !bytes.Equal(parsed.Fingerprint, priv.Fingerprint) {
		t.Errorf("fingerprint mismatch")
	}
}
