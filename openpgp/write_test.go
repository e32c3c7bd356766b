// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openpgp

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/blag/PGPy/openpgp/packet"
)

func TestDetachedSignatureRSA(t *testing.T) {
	signer, err := NewEntity("Alice Example", "", "alice@example.com", &packet.Config{
		RSABits: 2048,
	})
	if err != nil {
		t.Fatal(err)
	}
	keyring := EntityList{signer}

	message := []byte("hello world")
	sig := bytes.NewBuffer(nil)
	if err := DetachSign(sig, signer, bytes.NewReader(message), nil); err != nil {
		t.Fatal(err)
	}

	issuer, err := CheckDetachedSignature(keyring, bytes.NewReader(message), bytes.NewReader(sig.Bytes()), nil)
	if err != nil {
		t.Fatalf("good signature rejected: %s", err)
	}
	if issuer.PrimaryKey.KeyId != signer.PrimaryKey.KeyId {
		t.Errorf("signature attributed to the wrong key")
	}

	// A corrupted message must not verify.
	corrupted := append([]byte{}, message...)
	corrupted[0] ^= 0x01
	_, err = CheckDetachedSignature(keyring, bytes.NewReader(corrupted), bytes.NewReader(sig.Bytes()), nil)
	if err == nil {
		t.Fatal("corrupted message verified")
	}
}

func TestDetachedSignatureText(t *testing.T) {
	signer, err := NewEntity("Alice Example", "", "alice@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	if err != nil {
		t.Fatal(err)
	}
	keyring := EntityList{signer}

	sig := bytes.NewBuffer(nil)
	if err := DetachSignText(sig, signer, bytes.NewReader([]byte("line one\nline two\n")), nil); err != nil {
		t.Fatal(err)
	}

	// Text signatures are made over canonical CRLF line endings, so the
	// same text with different line endings must still verify.
	_, err = CheckDetachedSignature(keyring, bytes.NewReader([]byte("line one\r\nline two\r\n")), bytes.NewReader(sig.Bytes()), nil)
	if err != nil {
		t.Fatalf("signature over canonicalised text rejected: %s", err)
	}
}

func TestEncryptToTwoRecipients(t *testing.T) {
	config := &packet.Config{Algorithm: packet.PubKeyAlgoEdDSA}
	alice, err := NewEntity("Alice Example", "", "alice@example.com", config)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := NewEntity("Bob Example", "", "bob@example.com", config)
	if err != nil {
		t.Fatal(err)
	}
	carol, err := NewEntity("Carol Example", "", "carol@example.com", config)
	if err != nil {
		t.Fatal(err)
	}

	document := make([]byte, 10*1024)
	if _, err := rand.Read(document); err != nil {
		t.Fatal(err)
	}

	ciphertext := bytes.NewBuffer(nil)
	w, err := Encrypt(ciphertext, []*Entity{alice, bob}, alice, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(document); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// Both recipients must be able to decrypt and verify the message.
	for _, recipient := range []*Entity{alice, bob} {
		keyring := EntityList{recipient, alice}
		md, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), keyring, nil, nil)
		if err != nil {
			t.Fatalf("%s failed to read the message: %s", recipient.PrimaryIdentity().Name, err)
		}
		if !md.IsEncrypted {
			t.Error("message not reported as encrypted")
		}
		if len(md.EncryptedToKeyIds) != 2 {
			t.Errorf("message encrypted to %d keys, want 2", len(md.EncryptedToKeyIds))
		}
		plaintext, err := io.ReadAll(md.UnverifiedBody)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(plaintext, document) {
			t.Errorf("decrypted document differs from the original")
		}
		if !md.IsSigned {
			t.Error("message not reported as signed")
		}
		if md.SignatureError != nil {
			t.Errorf("signature error: %s", md.SignatureError)
		}
		if md.Signature == nil {
			t.Error("no verified signature")
		} else if len(md.Signature.IntendedRecipients) != 2 {
			t.Errorf("signature names %d intended recipients, want 2", len(md.Signature.IntendedRecipients))
		}
	}

	// A key that is not a recipient must not be able to decrypt it.
	_, err = ReadMessage(bytes.NewReader(ciphertext.Bytes()), EntityList{carol}, nil, nil)
	if err == nil {
		t.Fatal("message decrypted with a non-recipient key")
	}
}

func TestEncryptAEAD(t *testing.T) {
	config := &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
		AEADConfig: &packet.AEADConfig{
			DefaultMode: packet.AEADModeOCB,
		},
	}
	recipient, err := NewEntity("Recipient", "", "recipient@example.com", config)
	if err != nil {
		t.Fatal(err)
	}

	message := []byte("aead protected message")
	ciphertext := bytes.NewBuffer(nil)
	w, err := Encrypt(ciphertext, []*Entity{recipient}, nil, nil, config)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(message)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	md, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), EntityList{recipient}, nil, config)
	if err != nil {
		t.Fatal(err)
	}
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, message) {
		t.Errorf("got %q, want %q", plaintext, message)
	}
}

func TestEncryptWithCompression(t *testing.T) {
	config := &packet.Config{
		Algorithm:              packet.PubKeyAlgoEdDSA,
		DefaultCompressionAlgo: packet.CompressionZLIB,
	}
	recipient, err := NewEntity("Recipient", "", "recipient@example.com", config)
	if err != nil {
		t.Fatal(err)
	}

	message := bytes.Repeat([]byte("compressible plaintext. "), 512)
	ciphertext := bytes.NewBuffer(nil)
	w, err := Encrypt(ciphertext, []*Entity{recipient}, nil, nil, config)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(message)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	md, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), EntityList{recipient}, nil, config)
	if err != nil {
		t.Fatal(err)
	}
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, message) {
		t.Errorf("decompressed plaintext differs from the original")
	}
}

func TestSignedMessage(t *testing.T) {
	signer, err := NewEntity("Signer", "", "signer@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	if err != nil {
		t.Fatal(err)
	}

	message := []byte("a signed but unencrypted message")
	out := bytes.NewBuffer(nil)
	w, err := Sign(out, signer, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(message)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	md, err := ReadMessage(out, EntityList{signer}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !md.IsSigned {
		t.Error("message not reported as signed")
	}
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, message) {
		t.Errorf("got %q, want %q", plaintext, message)
	}
	if md.SignatureError != nil {
		t.Errorf("signature error: %s", md.SignatureError)
	}
}
