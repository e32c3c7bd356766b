// Copyright (C) 2019 ProtonTech AG

package packet

import (
	"bytes"
	"io"
	mathrand "math/rand"
	"testing"

	"github.com/blag/PGPy/openpgp/errors"
)

var aeadTestModes = map[string]AEADMode{
	"EAX": AEADModeEAX,
	"OCB": AEADModeOCB,
}

func TestAeadRandomStreamRoundTrip(t *testing.T) {
	for name, mode := range aeadTestModes {
		mode := mode
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 8; i++ {
				// Plaintext lengths around and across chunk boundaries.
				length := mathrand.Intn(1 << 14)
				plaintext := randomKey(length)
				key := randomKey(CipherAES256.KeySize())

				config := &Config{
					AEADConfig: &AEADConfig{
						DefaultMode:   mode,
						ChunkSizeByte: 0x06,
					},
				}

				buf := bytes.NewBuffer(nil)
				w, err := SerializeAEADEncrypted(buf, key, CipherAES256, mode, config)
				if err != nil {
					t.Fatal(err)
				}
				if _, err := w.Write(plaintext); err != nil {
					t.Fatal(err)
				}
				if err := w.Close(); err != nil {
					t.Fatal(err)
				}

				p, err := Read(buf)
				if err != nil {
					t.Fatal(err)
				}
				ae, ok := p.(*AEADEncrypted)
				if !ok {
					t.Fatalf("didn't read an AEADEncrypted packet, got %#v", p)
				}

				r, err := ae.Decrypt(CipherAES256, key)
				if err != nil {
					t.Fatal(err)
				}
				got, err := io.ReadAll(r)
				if err != nil {
					t.Fatalf("error reading decrypted stream: %s", err)
				}
				if err := r.Close(); err != nil {
					t.Fatalf("error closing decrypted stream: %s", err)
				}
				if !bytes.Equal(got, plaintext) {
					t.Errorf("decrypted stream differs from plaintext (length %d)", length)
				}
			}
		})
	}
}

func TestAeadEmptyStreamRoundTrip(t *testing.T) {
	key := randomKey(CipherAES128.KeySize())
	config := &Config{
		AEADConfig: &AEADConfig{DefaultMode: AEADModeOCB},
	}

	buf := bytes.NewBuffer(nil)
	w, err := SerializeAEADEncrypted(buf, key, CipherAES128, AEADModeOCB, config)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	ae := p.(*AEADEncrypted)
	r, err := ae.Decrypt(CipherAES128, key)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("decrypted %d bytes from an empty message", len(got))
	}
}

func TestAeadTamperedStreamFails(t *testing.T) {
	plaintext := randomKey(2000)
	key := randomKey(CipherAES256.KeySize())
	config := &Config{
		AEADConfig: &AEADConfig{DefaultMode: AEADModeEAX, ChunkSizeByte: 0x06},
	}

	buf := bytes.NewBuffer(nil)
	w, err := SerializeAEADEncrypted(buf, key, CipherAES256, AEADModeEAX, config)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(plaintext)
	w.Close()

	raw := buf.Bytes()
	raw[len(raw)/2] ^= 0x80

	p, err := Read(bytes.NewBuffer(raw))
	if err != nil {
		t.Fatal(err)
	}
	ae := p.(*AEADEncrypted)
	r, err := ae.Decrypt(CipherAES256, key)
	if err != nil {
		t.Fatal(err)
	}
	_, err = io.ReadAll(r)
	if err == nil {
		err = r.Close()
	}
	if err == nil {
		t.Fatal("tampered AEAD stream was accepted")
	}
	if err != errors.ErrAEADTagVerification {
		t.Logf("tag failure reported as: %s", err)
	}
}

func TestAeadWrongKeyFails(t *testing.T) {
	plaintext := randomKey(512)
	key := randomKey(CipherAES256.KeySize())
	config := &Config{
		AEADConfig: &AEADConfig{DefaultMode: AEADModeOCB},
	}

	buf := bytes.NewBuffer(nil)
	w, err := SerializeAEADEncrypted(buf, key, CipherAES256, AEADModeOCB, config)
	if err != nil {
		t.Fatal(err)
	}
	w.Write(plaintext)
	w.Close()

	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	ae := p.(*AEADEncrypted)
	r, err := ae.Decrypt(CipherAES256, randomKey(CipherAES256.KeySize()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = io.ReadAll(r)
	if err == nil {
		err = r.Close()
	}
	if err == nil {
		t.Fatal("decryption with the wrong key succeeded")
	}
}
