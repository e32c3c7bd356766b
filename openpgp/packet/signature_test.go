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

	"github.com/blag/PGPy/openpgp/eddsa"
	"github.com/blag/PGPy/openpgp/internal/ecc"
)

func signingPrivateKey(t *testing.T) *PrivateKey {
	t.Helper()
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	return NewRSAPrivateKey(time.Unix(0x4d3c5c10, 0), rsaPriv)
}

func TestSignatureSignVerifyRoundTrip(t *testing.T) {
	priv := signingPrivateKey(t)

	sig := &Signature{
		Version:      4,
		SigType:      SigTypeBinary,
		PubKeyAlgo:   PubKeyAlgoRSA,
		Hash:         crypto.SHA256,
		CreationTime: time.Unix(0x4d3c5c10, 0),
		IssuerKeyId:  &priv.KeyId,
	}

	message := []byte("hello world")
	h, err := sig.PrepareSign(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Write(message)
	if err := sig.Sign(h, priv, nil); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer(nil)
	if err := sig.Serialize(buf); err != nil {
		t.Fatal(err)
	}

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed, ok := p.(*Signature)
	if !ok {
		t.Fatalf("didn't parse a signature, got %#v", p)
	}
	if parsed.SigType != SigTypeBinary || parsed.PubKeyAlgo != PubKeyAlgoRSA {
		t.Errorf("bad sigType or pubkey algo: %v, %v", parsed.SigType, parsed.PubKeyAlgo)
	}
	if parsed.IssuerKeyId == nil || *parsed.IssuerKeyId != priv.KeyId {
		t.Errorf("bad issuer key id")
	}

	vh, err := parsed.PrepareVerify()
	if err != nil {
		t.Fatal(err)
	}
	vh.Write(message)
	if err := priv.PublicKey.VerifySignature(vh, parsed); err != nil {
		t.Errorf("good signature rejected: %s", err)
	}

	// A corrupted message must not verify.
	vh, err = parsed.PrepareVerify()
	if err != nil {
		t.Fatal(err)
	}
	corrupted := append([]byte{}, message...)
	corrupted[0] ^= 0x40
	vh.Write(corrupted)
	if err := priv.PublicKey.VerifySignature(vh, parsed); err == nil {
		t.Errorf("corrupted message verified")
	}
}

func TestSignatureEdDSARoundTrip(t *testing.T) {
	curve := ecc.FindEdDSAByGenName("Curve25519")
	if curve == nil {
		t.Fatal("no curve found")
	}
	edPriv, err := eddsa.GenerateKey(rand.Reader, curve)
	if err != nil {
		t.Fatal(err)
	}
	priv := NewEdDSAPrivateKey(time.Unix(0x4d3c5c10, 0), edPriv)

	sig := &Signature{
		Version:      4,
		SigType:      SigTypeText,
		PubKeyAlgo:   PubKeyAlgoEdDSA,
		Hash:         crypto.SHA512,
		CreationTime: time.Unix(0x4d3c5c10, 0),
		IssuerKeyId:  &priv.KeyId,
	}

	h, err := sig.PrepareSign(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("text message"))
	if err := sig.Sign(h, priv, nil); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer(nil)
	if err := sig.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed := p.(*Signature)

	vh, err := parsed.PrepareVerify()
	if err != nil {
		t.Fatal(err)
	}
	vh.Write([]byte("text message"))
	if err := priv.PublicKey.VerifySignature(vh, parsed); err != nil {
		t.Errorf("EdDSA signature rejected: %s", err)
	}
}

func TestSignatureWithLifetimeExpires(t *testing.T) {
	priv := signingPrivateKey(t)

	creation := time.Unix(0x4d3c5c10, 0)
	lifetime := uint32(3600)
	sig := &Signature{
		Version:         4,
		SigType:         SigTypeBinary,
		PubKeyAlgo:      PubKeyAlgoRSA,
		Hash:            crypto.SHA256,
		CreationTime:    creation,
		IssuerKeyId:     &priv.KeyId,
		SigLifetimeSecs: &lifetime,
	}

	h, err := sig.PrepareSign(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("expiring"))
	if err := sig.Sign(h, priv, nil); err != nil {
		t.Fatal(err)
	}

	if sig.SigExpired(creation.Add(30 * time.Minute)) {
		t.Errorf("signature expired prematurely")
	}
	if !sig.SigExpired(creation.Add(2 * time.Hour)) {
		t.Errorf("signature did not expire")
	}
}
