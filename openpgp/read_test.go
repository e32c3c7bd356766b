// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the file LICENSE.

package openpgp

import (
	"bytes"
	"io"
	"testing"

	"github.com/blag/PGPy/openpgp/errors"
	"github.com/blag/PGPy/openpgp/packet"
	"github.com/blag/PGPy/openpgp/s2k"
)

func TestSymmetricallyEncryptedReadMessage(t *testing.T) {
	passphrase := []byte("correct horse battery staple")
	message := []byte("a message protected by a passphrase alone")

	config := &packet.Config{
		S2KConfig: &s2k.Config{S2KMode: s2k.IteratedSaltedS2K},
	}

	ciphertext := bytes.NewBuffer(nil)
	w, err := SymmetricallyEncrypt(ciphertext, passphrase, nil, config)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(message)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var promptCalls int
	prompt := func(keys []Key, symmetric bool) ([]byte, error) {
		promptCalls++
		if !symmetric {
			t.Error("prompt: message is not reported as symmetrically encrypted")
		}
		return passphrase, nil
	}

	md, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), nil, prompt, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !md.IsSymmetricallyEncrypted {
		t.Error("message not reported as symmetrically encrypted")
	}
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, message) {
		t.Errorf("got %q, want %q", plaintext, message)
	}
	if promptCalls != 1 {
		t.Errorf("prompt called %d times, want 1", promptCalls)
	}
}

func TestSymmetricallyEncryptedWrongPassphrase(t *testing.T) {
	ciphertext := bytes.NewBuffer(nil)
	w, err := SymmetricallyEncrypt(ciphertext, []byte("correct horse battery staple"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("secret"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var promptCalls int
	prompt := func(keys []Key, symmetric bool) ([]byte, error) {
		promptCalls++
		if promptCalls > 1 {
			return nil, errors.ErrKeyIncorrect
		}
		return []byte("wrong horse battery staple"), nil
	}

	md, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), nil, prompt, nil)
	if err == nil {
		// The derived key may accidentally survive the session key framing
		// checks, in which case decryption must fail on the integrity check.
		if _, err := io.ReadAll(md.UnverifiedBody); err == nil {
			t.Fatal("decryption succeeded with the wrong passphrase")
		}
	}
}

func TestSymmetricallyEncryptedAEADReadMessage(t *testing.T) {
	passphrase := []byte("correct horse battery staple")
	message := []byte("passphrase protected aead message")

	config := &packet.Config{
		AEADConfig: &packet.AEADConfig{DefaultMode: packet.AEADModeEAX},
	}

	ciphertext := bytes.NewBuffer(nil)
	w, err := SymmetricallyEncrypt(ciphertext, passphrase, nil, config)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(message)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	prompt := func(keys []Key, symmetric bool) ([]byte, error) {
		return passphrase, nil
	}
	md, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), nil, prompt, config)
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

func TestReadMessageWithEncryptedPrivateKey(t *testing.T) {
	recipient, err := NewEntity("Recipient", "", "recipient@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	if err != nil {
		t.Fatal(err)
	}

	ciphertext := bytes.NewBuffer(nil)
	w, err := Encrypt(ciphertext, []*Entity{recipient}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("for a locked key"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	passphrase := []byte("unlock me")
	if err := recipient.EncryptPrivateKeys(passphrase, nil); err != nil {
		t.Fatal(err)
	}

	prompt := func(keys []Key, symmetric bool) ([]byte, error) {
		if symmetric {
			t.Error("prompt: message incorrectly reported as symmetrically encrypted")
		}
		for _, k := range keys {
			if err := k.PrivateKey.Decrypt(passphrase); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	md, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), EntityList{recipient}, prompt, nil)
	if err != nil {
		t.Fatal(err)
	}
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		t.Fatal(err)
	}
	if string(plaintext) != "for a locked key" {
		t.Errorf("got %q", plaintext)
	}
	if md.DecryptedWith.PublicKey == nil {
		t.Error("DecryptedWith not populated")
	}
}

func TestReadMessageRejectsUnprotectedData(t *testing.T) {
	// A bare symmetrically encrypted packet without integrity protection
	// must be rejected unless explicitly allowed.
	key := make([]byte, 16)
	ciphertext := bytes.NewBuffer(nil)
	if _, err := packet.SerializeSymmetricKeyEncrypted(ciphertext, []byte("pass"), nil); err != nil {
		t.Fatal(err)
	}
	// Legacy tag 9 packet with arbitrary contents.
	ciphertext.Write([]byte{0xa4, 0x08})
	ciphertext.Write(key[:8])

	_, err := ReadMessage(bytes.NewReader(ciphertext.Bytes()), nil, nil, nil)
	if err == nil {
		t.Fatal("unauthenticated message accepted")
	}
	if _, ok := err.(errors.UnsupportedError); !ok {
		t.Logf("rejection reported as: %s", err)
	}
}
