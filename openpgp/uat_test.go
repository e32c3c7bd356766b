// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openpgp

import (
	"bytes"
	"testing"

	"github.com/blag/PGPy/openpgp/packet"
)

// A two byte stand-in for real image data. The photo subpacket format does
// not validate the image contents.
var testPhotoBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46}

func TestUserAttributeAddPhoto(t *testing.T) {
	entity, err := NewEntity("Photo Holder", "", "photo@example.com", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := entity.AddPhoto(testPhotoBytes, nil); err != nil {
		t.Fatal(err)
	}
	if len(entity.UserAttributes) != 1 {
		t.Fatalf("entity has %d user attributes, want 1", len(entity.UserAttributes))
	}

	serialized := bytes.NewBuffer(nil)
	if err := entity.SerializePrivate(serialized, nil); err != nil {
		t.Fatal(err)
	}

	parsed, err := ReadEntity(packet.NewReader(serialized))
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.UserAttributes) != 1 {
		t.Fatal("user attribute lost in serialization")
	}

	imgData := parsed.UserAttributes[0].UserAttribute.ImageData()
	if len(imgData) != 1 || !bytes.Equal(imgData[0], testPhotoBytes) {
		t.Fatal("image data altered in round trip")
	}

	sig := parsed.UserAttributes[0].SelfSignature
	if sig == nil {
		t.Fatal("user attribute has no self-signature")
	}
	err = parsed.PrimaryKey.VerifyUserAttributeSignature(parsed.UserAttributes[0].UserAttribute, parsed.PrimaryKey, sig)
	if err != nil {
		t.Errorf("user attribute self-signature does not verify: %s", err)
	}
}
