// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"io"
	"testing"
)

func TestOpaqueRoundTrip(t *testing.T) {
	uid := NewUserId("Opaque Tester", "", "opaque@example.com")
	buf := bytes.NewBuffer(nil)
	if err := uid.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	serialized := append([]byte{}, buf.Bytes()...)

	op, err := ReadOpaquePacket(buf)
	if err != nil {
		t.Fatal(err)
	}
	if op.Type != uint8(packetTypeUserId) {
		t.Errorf("got type %d, want %d", op.Type, packetTypeUserId)
	}

	out := bytes.NewBuffer(nil)
	if err := op.Serialize(out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), serialized) {
		t.Errorf("opaque round trip altered the packet:\ngot  %x\nwant %x", out.Bytes(), serialized)
	}

	p, err := op.Parse()
	if err != nil {
		t.Fatal(err)
	}
	parsed, ok := p.(*UserId)
	if !ok {
		t.Fatalf("Parse returned %#v", p)
	}
	if parsed.Id != uid.Id {
		t.Errorf("got id %q, want %q", parsed.Id, uid.Id)
	}
}

func TestOpaqueReader(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	ids := []*UserId{
		NewUserId("First", "", ""),
		NewUserId("Second", "", ""),
	}
	for _, uid := range ids {
		if err := uid.Serialize(buf); err != nil {
			t.Fatal(err)
		}
	}

	or := NewOpaqueReader(buf)
	var count int
	for {
		op, err := or.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if op.Type != uint8(packetTypeUserId) {
			t.Errorf("packet %d: wrong type %d", count, op.Type)
		}
		count++
	}
	if count != len(ids) {
		t.Errorf("read %d packets, want %d", count, len(ids))
	}
}
