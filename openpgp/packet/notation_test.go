package packet

import (
	"bytes"
	"crypto"
	"testing"
	"time"
)

func TestNotationGetData(t *testing.T) {
	notation := Notation{
		Name:            "test@example.com",
		Value:           []byte("test-value"),
		IsCritical:      true,
		IsHumanReadable: true,
	}
	expected := []byte{0x80, 0, 0, 0, 0, 16, 0, 10}
	expected = append(expected, []byte(notation.Name)...)
	expected = append(expected, []byte(notation.Value)...)
	data := notation.getData()
	if !bytes.Equal(expected, data) {
		t.Fatalf("Expected %s, got %s", expected, data)
	}
}

func TestNotationGetDataNotHumanReadable(t *testing.T) {
	notation := Notation{
		Name:            "test@example.com",
		Value:           []byte("test-value"),
		IsCritical:      true,
		IsHumanReadable: false,
	}
	expected := []byte{0, 0, 0, 0, 0, 16, 0, 10}
	expected = append(expected, []byte(notation.Name)...)
	expected = append(expected, []byte(notation.Value)...)
	data := notation.getData()
	if !bytes.Equal(expected, data) {
		t.Fatalf("Expected %s, got %s", expected, data)
	}
}

func TestNotationRoundTripInSignature(t *testing.T) {
	priv := signingPrivateKey(t)

	sig := &Signature{
		Version:      4,
		SigType:      SigTypeBinary,
		PubKeyAlgo:   PubKeyAlgoRSA,
		Hash:         crypto.SHA256,
		CreationTime: time.Unix(0x4d3c5c10, 0),
		IssuerKeyId:  &priv.KeyId,
		Notations: []*Notation{
			{
				Name:            "color@example.com",
				Value:           []byte("blue"),
				IsHumanReadable: true,
			},
			{
				Name:       "required@example.com",
				Value:      []byte{0x01, 0x02},
				IsCritical: true,
			},
		},
	}

	h, err := sig.PrepareSign(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("notated"))
	if err := sig.Sign(h, priv, nil); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer(nil)
	if err := sig.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	p, err := Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	parsed := p.(*Signature)
	if len(parsed.Notations) != 2 {
		t.Fatalf("parsed %d notations, want 2", len(parsed.Notations))
	}
	if parsed.Notations[0].Name != "color@example.com" || string(parsed.Notations[0].Value) != "blue" {
		t.Errorf("first notation mangled: %#v", parsed.Notations[0])
	}
	if !parsed.Notations[0].IsHumanReadable {
		t.Errorf("human readable flag lost")
	}
	if !parsed.Notations[1].IsCritical {
		t.Errorf("critical flag lost")
	}
}
