// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package openpgp

import (
	"bytes"
	"testing"
	"time"

	"github.com/blag/PGPy/openpgp/packet"
)

func newTestEntity(t *testing.T, config *packet.Config) *Entity {
	t.Helper()
	entity, err := NewEntity("Test Key", "", "test@example.com", config)
	if err != nil {
		t.Fatal(err)
	}
	return entity
}

func TestNewEntityStructure(t *testing.T) {
	entity := newTestEntity(t, nil)

	if entity.PrimaryKey == nil || entity.PrivateKey == nil {
		t.Fatal("entity is missing key material")
	}
	if len(entity.Identities) != 1 {
		t.Fatalf("entity has %d identities, want 1", len(entity.Identities))
	}
	identity := entity.PrimaryIdentity()
	if identity.UserId.Email != "test@example.com" {
		t.Errorf("unexpected email: %q", identity.UserId.Email)
	}
	if identity.SelfSignature == nil {
		t.Fatal("identity has no self-signature")
	}
	if identity.SelfSignature.IsPrimaryId == nil || !*identity.SelfSignature.IsPrimaryId {
		t.Error("first identity is not flagged as primary")
	}
	if len(entity.Subkeys) != 1 {
		t.Fatalf("entity has %d subkeys, want 1", len(entity.Subkeys))
	}
	subkey := entity.Subkeys[0]
	if !subkey.Sig.FlagEncryptCommunications || !subkey.Sig.FlagEncryptStorage {
		t.Error("encryption subkey is missing encryption flags")
	}
}

func TestNewEntitySerializeRoundTrip(t *testing.T) {
	entity := newTestEntity(t, nil)

	buf := bytes.NewBuffer(nil)
	if err := entity.Serialize(buf); err != nil {
		t.Fatal(err)
	}

	keyring, err := ReadKeyRing(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(keyring) != 1 {
		t.Fatalf("read %d entities, want 1", len(keyring))
	}
	parsed := keyring[0]
	if parsed.PrimaryKey.KeyId != entity.PrimaryKey.KeyId {
		t.Errorf("primary key id mismatch")
	}
	if len(parsed.Subkeys) != 1 {
		t.Fatalf("parsed %d subkeys, want 1", len(parsed.Subkeys))
	}
	if _, ok := parsed.EncryptionKey(time.Now()); !ok {
		t.Error("no valid encryption key after round trip")
	}
}

func TestNewEntitySerializePrivateRoundTrip(t *testing.T) {
	entity := newTestEntity(t, nil)

	buf := bytes.NewBuffer(nil)
	if err := entity.SerializePrivate(buf, nil); err != nil {
		t.Fatal(err)
	}

	keyring, err := ReadKeyRing(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed := keyring[0]
	if parsed.PrivateKey == nil {
		t.Fatal("no private key after round trip")
	}
	if len(parsed.Subkeys) != 1 || parsed.Subkeys[0].PrivateKey == nil {
		t.Fatal("no subkey private key after round trip")
	}
	if _, ok := parsed.SigningKey(time.Now()); !ok {
		t.Error("no valid signing key after round trip")
	}
}

func TestAddSigningSubkey(t *testing.T) {
	entity := newTestEntity(t, nil)
	if err := entity.AddSigningSubkey(nil); err != nil {
		t.Fatal(err)
	}
	if len(entity.Subkeys) != 2 {
		t.Fatalf("entity has %d subkeys, want 2", len(entity.Subkeys))
	}
	signingSubkey := entity.Subkeys[1]
	if !signingSubkey.Sig.FlagSign {
		t.Error("signing subkey is missing the sign flag")
	}
	if signingSubkey.Sig.EmbeddedSignature == nil {
		t.Fatal("signing subkey has no cross-certification")
	}

	// The signing subkey must be selected over the primary key.
	key, ok := entity.SigningKey(time.Now())
	if !ok {
		t.Fatal("no signing key found")
	}
	if key.PublicKey.KeyId != signingSubkey.PublicKey.KeyId {
		t.Error("signing subkey was not preferred")
	}

	// Serialized and reparsed, the cross-certification must still verify.
	buf := bytes.NewBuffer(nil)
	if err := entity.SerializePrivate(buf, nil); err != nil {
		t.Fatal(err)
	}
	keyring, err := ReadKeyRing(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(keyring[0].Subkeys) != 2 {
		t.Fatalf("lost a subkey in serialization")
	}
}

func TestEncryptDecryptPrivateKeys(t *testing.T) {
	entity := newTestEntity(t, nil)

	passphrase := []byte("key passphrase")
	if err := entity.EncryptPrivateKeys(passphrase, nil); err != nil {
		t.Fatal(err)
	}
	if !entity.PrivateKey.Encrypted {
		t.Error("primary private key not encrypted")
	}
	for _, subkey := range entity.Subkeys {
		if !subkey.PrivateKey.Encrypted {
			t.Error("subkey private key not encrypted")
		}
	}

	if err := entity.DecryptPrivateKeys([]byte("not the passphrase")); err == nil {
		t.Error("decrypted with wrong passphrase")
	}
	if err := entity.DecryptPrivateKeys(passphrase); err != nil {
		t.Fatal(err)
	}
	if entity.PrivateKey.Encrypted {
		t.Error("primary private key still encrypted")
	}
}

func TestRevokeKey(t *testing.T) {
	entity := newTestEntity(t, nil)

	if entity.Revoked(time.Now()) {
		t.Fatal("fresh key is already revoked")
	}
	err := entity.RevokeKey(packet.KeyCompromised, "key material disclosed", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entity.Revocations) != 1 {
		t.Fatalf("entity has %d revocations, want 1", len(entity.Revocations))
	}
	if !entity.Revoked(time.Now()) {
		t.Error("revoked key not reported as revoked")
	}
	if _, ok := entity.EncryptionKey(time.Now()); ok {
		t.Error("revoked entity still offers an encryption key")
	}
}

func TestRevokeSubkey(t *testing.T) {
	entity := newTestEntity(t, nil)

	sk := &entity.Subkeys[0]
	if err := entity.RevokeSubkey(sk, packet.KeyRetired, "retired", nil); err != nil {
		t.Fatal(err)
	}
	if len(sk.Revocations) != 1 {
		t.Fatalf("subkey has %d revocations, want 1", len(sk.Revocations))
	}
	if !sk.Revoked(time.Now()) {
		t.Error("revoked subkey not reported as revoked")
	}
	if _, ok := entity.EncryptionKey(time.Now()); ok {
		t.Error("revoked subkey still selected for encryption")
	}
}

func TestKeyExpiry(t *testing.T) {
	referenceTime := time.Unix(1693526400, 0) // 2023-09-01
	config := &packet.Config{
		Time:            func() time.Time { return referenceTime },
		KeyLifetimeSecs: 86400 * 30,
	}
	entity := newTestEntity(t, config)

	if _, ok := entity.EncryptionKey(referenceTime.Add(24 * time.Hour)); !ok {
		t.Error("key unusable within its lifetime")
	}
	if _, ok := entity.EncryptionKey(referenceTime.Add(31 * 24 * time.Hour)); ok {
		t.Error("expired key still offered for encryption")
	}
}

func TestSignIdentity(t *testing.T) {
	signee := newTestEntity(t, nil)
	signer := newTestEntity(t, nil)

	identity := signee.PrimaryIdentity().Name
	if err := signee.SignIdentity(identity, signer, nil); err != nil {
		t.Fatal(err)
	}

	ident := signee.Identities[identity]
	if len(ident.Signatures) != 1 {
		t.Fatalf("identity has %d third-party signatures, want 1", len(ident.Signatures))
	}
	cert := ident.Signatures[0]
	if cert.IssuerKeyId == nil || *cert.IssuerKeyId != signer.PrimaryKey.KeyId {
		t.Error("certification carries the wrong issuer")
	}
	if err := signer.PrimaryKey.VerifyUserIdSignature(identity, signee.PrimaryKey, cert); err != nil {
		t.Errorf("certification does not verify: %s", err)
	}
}

func TestKeysByIdUsage(t *testing.T) {
	entity := newTestEntity(t, nil)
	keyring := EntityList{entity}

	encKeys := keyring.KeysByIdUsage(entity.Subkeys[0].PublicKey.KeyId, packet.KeyFlagEncryptCommunications)
	if len(encKeys) != 1 {
		t.Errorf("found %d encryption keys, want 1", len(encKeys))
	}

	signKeys := keyring.KeysByIdUsage(entity.Subkeys[0].PublicKey.KeyId, packet.KeyFlagSign)
	if len(signKeys) != 0 {
		t.Errorf("encryption subkey returned for signing usage")
	}

	primary := keyring.KeysByIdUsage(entity.PrimaryKey.KeyId, packet.KeyFlagSign)
	if len(primary) != 1 {
		t.Errorf("found %d signing keys for the primary, want 1", len(primary))
	}
}
