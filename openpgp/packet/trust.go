package packet

import (
	"io"
)

// Trust packets are not supposed to be exported, and the meaning of the
// contents is implementation defined. The packet is parsed and its contents
// are kept so keyrings that contain them can be round-tripped.
type Trust struct {
	Contents []byte
}

func (t *Trust) parse(r io.Reader) (err error) {
	t.Contents, err = io.ReadAll(r)
	return
}

// Serialize marshals the trust packet, including the header, to w.
func (t *Trust) Serialize(w io.Writer) error {
	if err := serializeHeader(w, packetTypeTrust, len(t.Contents)); err != nil {
		return err
	}
	_, err := w.Write(t.Contents)
	return err
}
