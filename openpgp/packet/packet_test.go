// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io"
	"testing"
)

func readerFromHex(s string) io.Reader {
	data, err := hex.DecodeString(s)
	if err != nil {
		panic("readerFromHex: bad input")
	}
	return bytes.NewBuffer(data)
}

func randomKey(length int) []byte {
	key := make([]byte, length)
	_, err := rand.Read(key)
	if err != nil {
		panic("can't read from rand")
	}
	return key
}

var serializeHeaderTests = []int{
	0, 1, 96, 191, 192, 193, 8000, 8383, 8384, 16000, 65536, 165536,
}

func TestSerializeHeader(t *testing.T) {
	for _, length := range serializeHeaderTests {
		buf := bytes.NewBuffer(nil)
		err := serializeHeader(buf, packetTypeSignature, length)
		if err != nil {
			t.Errorf("length %d, err: %s", length, err)
		}
		tag, parsedLength, _, err := readHeader(buf)
		if err != nil {
			t.Errorf("length %d, err: %s", length, err)
		}
		if tag != packetTypeSignature {
			t.Errorf("length %d, got tag %d", length, tag)
		}
		if int(parsedLength) != length {
			t.Errorf("length %d, got parsed length %d", length, parsedLength)
		}
	}
}

func TestPartialLengths(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	w := &partialLengthWriter{w: noOpCloser{buf}}

	const maxChunkSize = 64

	var b [maxChunkSize]byte
	var submessage []byte
	for l := 1; l <= maxChunkSize; l++ {
		_, err := rand.Read(b[:l])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(b[:l]); err != nil {
			t.Errorf("error writing %d bytes: %s", l, err)
		}
		submessage = append(submessage, b[:l]...)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// The reader should be able to restore the original submessage
	r := &partialLengthReader{r: buf, remaining: 0, isPartial: true}
	contents, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(contents, submessage) {
		t.Errorf("got %x\nwant %x", contents, submessage)
	}
}

func TestStreamHeaderRoundTrip(t *testing.T) {
	plaintext := randomKey(20000)

	buf := bytes.NewBuffer(nil)
	w, err := serializeStreamHeader(noOpCloser{buf}, packetTypeLiteralData)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	tag, _, contents, err := readHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if tag != packetTypeLiteralData {
		t.Errorf("got tag %d, want %d", tag, packetTypeLiteralData)
	}
	parsed, err := io.ReadAll(contents)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(parsed, plaintext) {
		t.Errorf("contents mismatch after partial length round trip")
	}
}

func TestReadHeaderOldFormat(t *testing.T) {
	tests := []struct {
		hexInput  string
		tag       packetType
		length    int64
		contents  string
		wantError bool
	}{
		// old format, one byte length
		{"8804616263ff", 2, 4, "616263ff", false},
		// old format, two byte length
		{"890002616263ff", 2, 2, "6162", false},
		// old format, four byte length
		{"8a0000000461626364", 2, 4, "61626364", false},
		// old format, indeterminate length
		{"8b616263", 2, -1, "616263", false},
		// truncated header
		{"88", 0, 0, "", true},
	}

	for i, test := range tests {
		tag, length, contents, err := readHeader(readerFromHex(test.hexInput))
		if test.wantError {
			if err == nil {
				t.Errorf("#%d: expected error", i)
			}
			continue
		}
		if err != nil {
			t.Errorf("#%d: unexpected error: %s", i, err)
			continue
		}
		if tag != test.tag || length != test.length {
			t.Errorf("#%d: got tag %d length %d, want tag %d length %d", i, tag, length, test.tag, test.length)
			continue
		}
		body, err := io.ReadAll(contents)
		if err != nil {
			if !test.wantError {
				t.Errorf("#%d: error from ReadAll: %s", i, err)
			}
			continue
		}
		if hex.EncodeToString(body) != test.contents {
			t.Errorf("#%d: got contents %x, want %s", i, body, test.contents)
		}
	}
}
