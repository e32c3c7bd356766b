// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestSerializeLiteralRoundTrip(t *testing.T) {
	tests := []struct {
		isBinary bool
		fileName string
		time     uint32
		contents string
	}{
		{true, "", 0, "contents"},
		{false, "test.txt", 0x4d3c5c10, "hello world\n"},
		{true, strings.Repeat("a", 300), 0, "long filename"},
		{true, "empty", 42, ""},
	}

	for i, test := range tests {
		buf := bytes.NewBuffer(nil)
		w, err := SerializeLiteral(noOpCloser{buf}, test.isBinary, test.fileName, test.time)
		if err != nil {
			t.Fatalf("#%d: %s", i, err)
		}
		if _, err := w.Write([]byte(test.contents)); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		p, err := Read(buf)
		if err != nil {
			t.Fatalf("#%d: error re-reading: %s", i, err)
		}
		l, ok := p.(*LiteralData)
		if !ok {
			t.Fatalf("#%d: didn't read a LiteralData packet, got %#v", i, p)
		}
		if l.IsBinary != test.isBinary {
			t.Errorf("#%d: IsBinary mismatch", i)
		}
		wantName := test.fileName
		if len(wantName) > 255 {
			wantName = wantName[:255]
		}
		if l.FileName != wantName {
			t.Errorf("#%d: filename mismatch: %q", i, l.FileName)
		}
		if l.Time != test.time {
			t.Errorf("#%d: time mismatch: %d", i, l.Time)
		}
		body, err := io.ReadAll(l.Body)
		if err != nil {
			t.Fatal(err)
		}
		if string(body) != test.contents {
			t.Errorf("#%d: contents mismatch: %q", i, body)
		}
	}
}
