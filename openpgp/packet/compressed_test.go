// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"io"
	"testing"
)

func roundTripCompressed(t *testing.T, algo CompressionAlgo, cc *CompressionConfig) {
	t.Helper()
	payload := bytes.Repeat([]byte("compressible content "), 500)

	buf := bytes.NewBuffer(nil)
	w, err := SerializeCompressed(noOpCloser{buf}, algo, cc)
	if err != nil {
		t.Fatalf("algo %d: %s", algo, err)
	}
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	p, err := Read(buf)
	if err != nil {
		t.Fatalf("algo %d: error re-reading: %s", algo, err)
	}
	c, ok := p.(*Compressed)
	if !ok {
		t.Fatalf("algo %d: didn't read a Compressed packet, got %#v", algo, p)
	}
	got, err := io.ReadAll(c.Body)
	if err != nil {
		t.Fatalf("algo %d: error decompressing: %s", algo, err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("algo %d: decompressed contents differ", algo)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	t.Run("ZIP", func(t *testing.T) {
		roundTripCompressed(t, CompressionZIP, nil)
	})
	t.Run("ZLIB", func(t *testing.T) {
		roundTripCompressed(t, CompressionZLIB, nil)
	})
	t.Run("BZIP2", func(t *testing.T) {
		roundTripCompressed(t, CompressionBZIP2, nil)
	})
	t.Run("ZLIBBestCompression", func(t *testing.T) {
		roundTripCompressed(t, CompressionZLIB, &CompressionConfig{Level: 9})
	})
}

func TestCompressedInvalidLevel(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	_, err := SerializeCompressed(noOpCloser{buf}, CompressionZLIB, &CompressionConfig{Level: 11})
	if err == nil {
		t.Fatal("accepted an out of range compression level")
	}
}
