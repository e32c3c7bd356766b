// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"io"
	"strings"
)

// UserId contains text that is intended to represent the name and email
// address of the key holder. See RFC 4880, section 5.11. By convention, this
// takes the form "Full Name (Comment) <email@example.com>"
type UserId struct {
	Id string // By convention, this takes the form "Full Name (Comment) <email@example.com>" which is split out in the fields below.

	Name, Comment, Email string
}

func hasInvalidCharacters(s string) bool {
	for _, c := range s {
		switch c {
		case '(', ')', '<', '>', 0:
			return true
		}
	}
	return false
}

// NewUserId returns a UserId or nil if any of the arguments contain invalid
// characters. The invalid characters are '\x00', '(', ')', '<' and '>'
func NewUserId(name, comment, email string) *UserId {
	// RFC 4880 doesn't deal with the structure of userid strings; the
	// name, comment and email form is just a convention.
	if hasInvalidCharacters(name) ||
		hasInvalidCharacters(comment) ||
		hasInvalidCharacters(email) {
		return nil
	}

	uid := new(UserId)
	uid.Name, uid.Comment, uid.Email = name, comment, email
	uid.Id = name
	if len(comment) > 0 {
		if len(uid.Id) > 0 {
			uid.Id += " "
		}
		uid.Id += "("
		uid.Id += comment
		uid.Id += ")"
	}
	if len(email) > 0 {
		if len(uid.Id) > 0 {
			uid.Id += " "
		}
		uid.Id += "<"
		uid.Id += email
		uid.Id += ">"
	}
	return uid
}

func (uid *UserId) parse(r io.Reader) (err error) {
	// RFC 4880, section 5.11
	b, err := io.ReadAll(r)
	if err != nil {
		return
	}
	uid.Id = string(b)
	uid.parseUserId()
	return
}

// Serialize marshals uid to w in the form of an OpenPGP packet, including
// header.
func (uid *UserId) Serialize(w io.Writer) error {
	err := serializeHeader(w, packetTypeUserId, len(uid.Id))
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(uid.Id))
	return err
}

// parseUserId extracts the name, comment and email from a user id string that
// is formatted as "Full Name (Comment) <email@example.com>".
func (uid *UserId) parseUserId() {
	id := uid.Id

	n, start, end := parseSubpart(id, 0, 0)
	uid.Name = id[start:end]

	c, start, end := parseSubpart(id, n, '(')
	uid.Comment = id[start:end]

	_, start, end = parseSubpart(id, c, '<')
	uid.Email = id[start:end]

	// RFC 2822 3.4: alternate simple form of a mailbox
	if uid.Email == "" && strings.ContainsRune(uid.Name, '@') {
		uid.Email = uid.Name
		uid.Name = ""
	}

	uid.Name = strings.TrimSpace(uid.Name)
	uid.Comment = strings.TrimSpace(uid.Comment)
	uid.Email = strings.TrimSpace(uid.Email)
}

// parseSubpart scans id from offset for the given bracket character and
// returns the offset after the closing bracket and the enclosed range. A zero
// bracket scans the unbracketed name at the start of the id.
func parseSubpart(id string, offset int, bracket rune) (next, start, end int) {
	var close rune
	switch bracket {
	case '(':
		close = ')'
	case '<':
		close = '>'
	}

	i := offset
	for i < len(id) {
		if bracket == 0 {
			if id[i] == '(' || id[i] == '<' {
				return i, offset, i
			}
		} else if rune(id[i]) == bracket {
			start = i + 1
			for j := start; j < len(id); j++ {
				if rune(id[j]) == close {
					return j + 1, start, j
				}
			}
			return len(id), start, len(id)
		}
		i++
	}
	if bracket == 0 {
		return i, offset, i
	}
	return offset, 0, 0
}
