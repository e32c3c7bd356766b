// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"testing"
)

var userIdTests = []struct {
	id                   string
	name, comment, email string
}{
	{"", "", "", ""},
	{"John Smith", "John Smith", "", ""},
	{"John Smith ()", "John Smith", "", ""},
	{"John Smith () <john@example.com>", "John Smith", "", "john@example.com"},
	{"John Smith (Comment) <john@example.com>", "John Smith", "Comment", "john@example.com"},
	{"John Smith <john@example.com>", "John Smith", "", "john@example.com"},
	{"John Smith (Comment)", "John Smith", "Comment", ""},
	{"<john@example.com>", "", "", "john@example.com"},
}

func TestParseUserId(t *testing.T) {
	for i, test := range userIdTests {
		uid := UserId{Id: test.id}
		uid.parseUserId()
		if uid.Name != test.name {
			t.Errorf("#%d: got name %q, want %q", i, uid.Name, test.name)
		}
		if uid.Comment != test.comment {
			t.Errorf("#%d: got comment %q, want %q", i, uid.Comment, test.comment)
		}
		if uid.Email != test.email {
			t.Errorf("#%d: got email %q, want %q", i, uid.Email, test.email)
		}
	}
}

func TestNewUserId(t *testing.T) {
	uid := NewUserId("Test Name", "Test Comment", "test@example.com")
	if uid == nil {
		t.Fatal("NewUserId returned nil")
	}
	if uid.Id != "Test Name (Test Comment) <test@example.com>" {
		t.Errorf("unexpected id: %q", uid.Id)
	}

	buf := bytes.NewBuffer(nil)
	if err := uid.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed, ok := p.(*UserId)
	if !ok {
		t.Fatalf("didn't read a UserId, got %#v", p)
	}
	if parsed.Name != "Test Name" || parsed.Comment != "Test Comment" || parsed.Email != "test@example.com" {
		t.Errorf("bad parse: %#v", parsed)
	}
}

func TestNewUserIdRejectsInvalidCharacters(t *testing.T) {
	if NewUserId("Test<Name", "", "") != nil {
		t.Error("accepted '<' in name")
	}
	if NewUserId("", "bad)comment", "") != nil {
		t.Error("accepted ')' in comment")
	}
	if NewUserId("", "", "bad\x00email") != nil {
		t.Error("accepted NUL in email")
	}
}
