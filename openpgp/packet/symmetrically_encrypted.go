// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"io"

	"github.com/blag/PGPy/openpgp/errors"
)

// SymmetricallyEncrypted represents a symmetrically encrypted byte string. The
// encrypted Contents will consist of more OpenPGP packets. See RFC 4880,
// sections 5.7 and 5.13.
type SymmetricallyEncrypted struct {
	Version            int
	Contents           io.Reader // contains tag for version 2
	IntegrityProtected bool      // If true it is type 18 (with MDC or AEAD). False is packet type 9

	// Specific to version 1
	prefix []byte
}

const symmetricallyEncryptedVersionMdc = 1

func (se *SymmetricallyEncrypted) parse(r io.Reader) error {
	if se.IntegrityProtected {
		// See RFC 4880, section 5.13.
		var buf [1]byte
		_, err := readFull(r, buf[:])
		if err != nil {
			return err
		}
		if buf[0] != symmetricallyEncryptedVersionMdc {
			return errors.UnsupportedError("unknown SymmetricallyEncrypted version")
		}
		se.Version = int(buf[0])
	}
	se.Contents = r
	return nil
}

// Decrypt returns a ReadCloser, from which the decrypted contents of the
// packet can be read. An incorrect key will only be detected after trying
// to decrypt the entire data.
func (se *SymmetricallyEncrypted) Decrypt(c CipherFunction, key []byte) (io.ReadCloser, error) {
	// Packets without integrity protection use the legacy, structurally
	// broken Symmetrically Encrypted Data format. They are still readable
	// for interoperability with very old messages.
	return se.decryptMdc(c, key)
}

// SerializeSymmetricallyEncrypted serializes a symmetrically encrypted packet
// to w. The Contents of the packet are encrypted using the given cipher and
// key. The given WriteCloser must be closed to finalize the packet.
func SerializeSymmetricallyEncrypted(w io.Writer, c CipherFunction, key []byte, config *Config) (Contents io.WriteCloser, err error) {
	writeCloser := noOpCloser{w}
	ciphertext, err := serializeStreamHeader(writeCloser, packetTypeSymmetricallyEncryptedMDC)
	if err != nil {
		return
	}

	Contents, err = serializeSymmetricallyEncryptedMdc(ciphertext, c, key, config)
	if err != nil {
		return
	}

	return
}
