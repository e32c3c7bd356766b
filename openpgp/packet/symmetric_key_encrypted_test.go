// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"io"
	mathrand "math/rand"
	"testing"

	"github.com/blag/PGPy/openpgp/s2k"
)

const maxPassLen = 64

func TestSerializeSymmetricKeyEncryptedRoundTrip(t *testing.T) {
	ciphers := map[string]CipherFunction{
		"AES128": CipherAES128,
		"AES192": CipherAES192,
		"AES256": CipherAES256,
	}

	modesS2K := map[string]s2k.Mode{
		"Salted":   s2k.SaltedS2K,
		"Iterated": s2k.IteratedSaltedS2K,
		"Argon2":   s2k.Argon2S2K,
	}

	for cipherName, cipher := range ciphers {
		t.Run(cipherName, func(t *testing.T) {
			for s2kName, s2ktype := range modesS2K {
				t.Run(s2kName, func(t *testing.T) {
					var buf bytes.Buffer
					passphrase := randomKey(1 + mathrand.Intn(maxPassLen))

					config := &Config{
						DefaultCipher: cipher,
						S2KConfig:     &s2k.Config{S2KMode: s2ktype},
					}

					key, err := SerializeSymmetricKeyEncrypted(&buf, passphrase, config)
					if err != nil {
						t.Fatalf("failed to serialize: %s", err)
					}

					p, err := Read(&buf)
					if err != nil {
						t.Fatalf("failed to reparse: %s", err)
					}
					ske, ok := p.(*SymmetricKeyEncrypted)
					if !ok {
						t.Fatalf("parsed a different packet type: %#v", p)
					}
					if ske.Version != 4 {
						t.Errorf("wrong version: %d", ske.Version)
					}

					parsedKey, parsedCipher, err := ske.Decrypt(passphrase)
					if err != nil {
						t.Fatalf("failed to decrypt reparsed SKESK: %s", err)
					}
					if !bytes.Equal(key, parsedKey) {
						t.Errorf("keys don't match: %x (original) vs %x (parsed)", key, parsedKey)
					}
					if parsedCipher != cipher {
						t.Errorf("cipher mismatch: %d vs %d", parsedCipher, cipher)
					}
				})
			}
		})
	}
}

func TestSymmetricKeyEncryptedPassphraseProtectedMessage(t *testing.T) {
	passphrase := []byte("correct horse battery staple")
	wrongPassphrase := []byte("wrong horse battery staple")
	message := []byte("the quick brown fox jumps over the lazy dog")

	var buf bytes.Buffer
	key, err := SerializeSymmetricKeyEncrypted(&buf, passphrase, nil)
	if err != nil {
		t.Fatal(err)
	}
	w, err := SerializeSymmetricallyEncrypted(&buf, CipherAES128, key, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(message); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// Parse the SKESK, unlock it with the right passphrase and decrypt.
	p, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	ske := p.(*SymmetricKeyEncrypted)
	sessionKey, cipherFunc, err := ske.Decrypt(passphrase)
	if err != nil {
		t.Fatal(err)
	}

	p, err = Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	se := p.(*SymmetricallyEncrypted)
	r, err := se.Decrypt(cipherFunc, sessionKey)
	if err != nil {
		t.Fatal(err)
	}
	contents, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("integrity check failed: %s", err)
	}
	if !bytes.Equal(contents, message) {
		t.Errorf("got %q, want %q", contents, message)
	}

	// A key derived from the wrong passphrase must not decrypt the message.
	var buf2 bytes.Buffer
	key2, err := SerializeSymmetricKeyEncrypted(&buf2, passphrase, nil)
	if err != nil {
		t.Fatal(err)
	}
	w, err = SerializeSymmetricallyEncrypted(&buf2, CipherAES128, key2, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(message)
	w.Close()

	p, err = Read(&buf2)
	if err != nil {
		t.Fatal(err)
	}
	ske = p.(*SymmetricKeyEncrypted)
	wrongKey, wrongCipher, err := ske.Decrypt(wrongPassphrase)
	if err != nil {
		// The cipher byte decrypted to garbage, which is already a failure.
		return
	}
	p, err = Read(&buf2)
	if err != nil {
		t.Fatal(err)
	}
	se = p.(*SymmetricallyEncrypted)
	r, err = se.Decrypt(wrongCipher, wrongKey)
	if err != nil {
		return
	}
	if _, err := io.ReadAll(r); err == nil {
		if err := r.Close(); err == nil {
			t.Errorf("decryption with wrong passphrase succeeded")
		}
	}
}
