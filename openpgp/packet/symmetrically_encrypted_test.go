// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"io"
	"testing"

	"github.com/blag/PGPy/openpgp/errors"
)

func TestSerializeSymmetricallyEncryptedMdcRoundTrip(t *testing.T) {
	ciphers := []CipherFunction{CipherAES128, CipherAES192, CipherAES256}

	for _, cipher := range ciphers {
		key := randomKey(cipher.KeySize())
		plaintext := randomKey(5000)

		buf := bytes.NewBuffer(nil)
		w, err := SerializeSymmetricallyEncrypted(buf, cipher, key, nil)
		if err != nil {
			t.Fatalf("cipher %d: error from SerializeSymmetricallyEncrypted: %s", cipher, err)
		}
		if _, err := w.Write(plaintext); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		p, err := Read(buf)
		if err != nil {
			t.Fatalf("cipher %d: error reading packet: %s", cipher, err)
		}
		se, ok := p.(*SymmetricallyEncrypted)
		if !ok {
			t.Fatalf("cipher %d: didn't read a SymmetricallyEncrypted packet", cipher)
		}
		if !se.IntegrityProtected {
			t.Fatalf("cipher %d: packet is not integrity protected", cipher)
		}

		r, err := se.Decrypt(cipher, key)
		if err != nil {
			t.Fatal(err)
		}
		contents, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("cipher %d: MDC check failed: %s", cipher, err)
		}
		if !bytes.Equal(contents, plaintext) {
			t.Errorf("cipher %d: contents mismatch", cipher)
		}
	}
}

func TestSymmetricallyEncryptedMdcDetectsTampering(t *testing.T) {
	key := randomKey(CipherAES128.KeySize())
	plaintext := randomKey(1000)

	buf := bytes.NewBuffer(nil)
	w, err := SerializeSymmetricallyEncrypted(buf, CipherAES128, key, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(plaintext)
	w.Close()

	// Flip a bit in the middle of the encrypted contents.
	raw := buf.Bytes()
	raw[len(raw)/2] ^= 0x01

	p, err := Read(bytes.NewBuffer(raw))
	if err != nil {
		t.Fatal(err)
	}
	se := p.(*SymmetricallyEncrypted)
	r, err := se.Decrypt(CipherAES128, key)
	if err != nil {
		return
	}
	if _, err := io.ReadAll(r); err != nil {
		return
	}
	err = r.Close()
	if err == nil {
		t.Fatal("tampered message passed the integrity check")
	}
	if err != errors.ErrMDCHashMismatch && err != errors.ErrMDCMissing {
		// Tampering near the end can also corrupt the MDC trailer framing.
		if _, ok := err.(errors.SignatureError); !ok {
			t.Logf("integrity failure reported as: %s", err)
		}
	}
}

func TestSymmetricallyEncryptedDecryptWrongKeySize(t *testing.T) {
	key := randomKey(CipherAES128.KeySize())

	buf := bytes.NewBuffer(nil)
	w, err := SerializeSymmetricallyEncrypted(buf, CipherAES128, key, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("data"))
	w.Close()

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	se := p.(*SymmetricallyEncrypted)
	if _, err := se.Decrypt(CipherAES256, key); err == nil {
		t.Fatal("decryption with mismatched key size succeeded")
	}
}
