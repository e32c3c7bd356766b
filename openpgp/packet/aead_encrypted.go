// Copyright (C) 2019 ProtonTech AG

package packet

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"io"

	"github.com/blag/PGPy/openpgp/errors"
)

// AEADEncrypted represents an AEAD Encrypted Packet.
// See https://www.ietf.org/archive/id/draft-koch-openpgp-2015-rfc4880bis-00.html#section-5.16
type AEADEncrypted struct {
	cipher        CipherFunction
	mode          AEADMode
	chunkSizeByte byte
	Contents      io.Reader // Encrypted chunks and tags
	initialNonce  []byte    // Referred to as IV in RFC4880-bis
}

// aeadCrypter is an AEAD opener/sealer, its configuration, and data for
// en/decryption.
type aeadCrypter struct {
	aead           cipher.AEAD
	chunkSize      int
	initialNonce   []byte
	associatedData []byte // Chunk-independent associated data
	chunkIndex     []byte // Chunk counter
	bytesProcessed int    // Plaintext bytes encrypted/decrypted
}

// aeadEncrypter encrypts and writes bytes. It encrypts when necessary
// according to the AEAD block size, and caches the extra plaintext bytes for
// the next write.
type aeadEncrypter struct {
	aeadCrypter
	writer io.WriteCloser // 'writer' is a partialLengthWriter
	cache  []byte
}

// aeadDecrypter reads and decrypts bytes. It buffers extra decrypted bytes
// when necessary, similar to aeadEncrypter.
type aeadDecrypter struct {
	aeadCrypter
	reader      io.Reader // 'reader' is a partialLengthReader
	peekedBytes []byte    // Used to detect last chunk
	buffer      bytes.Buffer
	eof         bool
}

func (ae *AEADEncrypted) parse(buf io.Reader) error {
	headerData := make([]byte, 4)
	if n, err := io.ReadFull(buf, headerData); n < 4 {
		return errors.AEADError("could not read aead header: " + err.Error())
	}
	// Read initial nonce
	if headerData[0] != aeadEncryptedVersion {
		return errors.UnsupportedError("unknown aead version")
	}
	ae.cipher = CipherFunction(headerData[1])
	if ae.cipher.KeySize() == 0 {
		return errors.UnsupportedError("unknown cipher")
	}
	ae.mode = AEADMode(headerData[2])
	if !ae.mode.IsSupported() {
		return errors.UnsupportedError("unknown aead mode")
	}
	ae.chunkSizeByte = headerData[3]
	if ae.chunkSizeByte > 0x10 {
		return errors.StructuralError("invalid aead chunk size byte")
	}

	initialNonce := make([]byte, ae.mode.NonceLength())
	if n, err := io.ReadFull(buf, initialNonce); n < ae.mode.NonceLength() {
		return errors.AEADError("could not read aead nonce: " + err.Error())
	}
	ae.initialNonce = initialNonce
	ae.Contents = buf
	return nil
}

// Decrypt returns a io.ReadCloser from which the decrypted bytes can be read.
// The cipher argument is ignored; it is the cipher of the packet header that
// keyed the chunks.
func (ae *AEADEncrypted) Decrypt(_ CipherFunction, key []byte) (io.ReadCloser, error) {
	return ae.decryptStream(key)
}

func (ae *AEADEncrypted) decryptStream(key []byte) (io.ReadCloser, error) {
	if len(key) != ae.cipher.KeySize() {
		return nil, errors.AEADError("bad session key length")
	}
	aead := ae.mode.new(ae.cipher.new(key))
	// Carry the first tagLen bytes
	tagLen := ae.mode.TagLength()
	peekedBytes := make([]byte, tagLen)
	n, err := io.ReadFull(ae.Contents, peekedBytes)
	if n < tagLen || (err != nil && err != io.EOF) {
		return nil, errors.AEADError("not enough data to decrypt:" + err.Error())
	}
	return &aeadDecrypter{
		aeadCrypter: aeadCrypter{
			aead:           aead,
			chunkSize:      decodeAEADChunkSize(ae.chunkSizeByte),
			initialNonce:   ae.initialNonce,
			associatedData: ae.associatedData(),
			chunkIndex:     make([]byte, 8),
		},
		reader:      ae.Contents,
		peekedBytes: peekedBytes,
	}, nil
}

// associatedData for chunks: tag, version, cipher, mode, chunk size byte
func (ae *AEADEncrypted) associatedData() []byte {
	return []byte{
		0xC0 | byte(packetTypeAEADEncrypted),
		aeadEncryptedVersion,
		byte(ae.cipher),
		byte(ae.mode),
		ae.chunkSizeByte}
}

// decodeAEADChunkSize computes the effective chunk size from the wire octet.
func decodeAEADChunkSize(c byte) int {
	size := uint64(1 << (c + 6))
	return int(size)
}

// SerializeAEADEncrypted initializes the aeadCrypter and returns a writer.
// This writer encrypts and writes bytes (see aeadEncrypter.Write()).
func SerializeAEADEncrypted(w io.Writer, key []byte, cipherFunc CipherFunction, mode AEADMode, config *Config) (io.WriteCloser, error) {
	writeCloser := noOpCloser{w}
	writer, err := serializeStreamHeader(writeCloser, packetTypeAEADEncrypted)
	if err != nil {
		return nil, err
	}

	chunkSizeByte := config.AEAD().ChunkSizeByteValue()

	prefix := []byte{
		aeadEncryptedVersion,
		byte(cipherFunc),
		byte(mode),
		chunkSizeByte,
	}
	if _, err = writer.Write(prefix); err != nil {
		return nil, err
	}

	nonce := make([]byte, mode.NonceLength())
	if _, err = io.ReadFull(config.Random(), nonce); err != nil {
		return nil, err
	}
	if _, err = writer.Write(nonce); err != nil {
		return nil, err
	}

	alg := mode.new(cipherFunc.new(key))

	associatedData := append([]byte{0xC0 | byte(packetTypeAEADEncrypted)}, prefix...)

	return &aeadEncrypter{
		aeadCrypter: aeadCrypter{
			aead:           alg,
			chunkSize:      decodeAEADChunkSize(chunkSizeByte),
			associatedData: associatedData,
			chunkIndex:     make([]byte, 8),
			initialNonce:   nonce,
		},
		writer: writer}, nil
}

// Read decrypts bytes and reads them into dst. It decrypts when necessary and
// buffers extra decrypted bytes. It returns the number of bytes copied into
// dst and an error.
func (ar *aeadDecrypter) Read(dst []byte) (n int, err error) {
	// Return buffered plaintext bytes from previous calls
	if ar.buffer.Len() > 0 {
		return ar.buffer.Read(dst)
	}

	if ar.eof {
		return 0, io.EOF
	}

	// Read a chunk
	tagLen := ar.aead.Overhead()
	cipherChunkBuf := new(bytes.Buffer)
	_, errRead := io.CopyN(cipherChunkBuf, ar.reader, int64(ar.chunkSize+tagLen))
	cipherChunk := cipherChunkBuf.Bytes()
	if errRead != nil && errRead != io.EOF {
		return 0, errRead
	}

	if len(cipherChunk) > 0 {
		decrypted, errChunk := ar.openChunk(cipherChunk)
		if errChunk != nil {
			return 0, errChunk
		}
		if _, err = ar.buffer.Write(decrypted); err != nil {
			return 0, err
		}
	}

	// EOF detected: verify final tag
	if errRead == io.EOF {
		if errChunk := ar.validateFinalTag(ar.peekedBytes); errChunk != nil {
			return n, errChunk
		}
		ar.eof = true // Mark EOF for when we've returned all buffered data
	}

	return ar.buffer.Read(dst)
}

// Close wipes the aeadCrypter, along with the buffered and carried bytes.
func (ar *aeadDecrypter) Close() (err error) {
	ar.aeadCrypter = aeadCrypter{}
	ar.peekedBytes = nil
	return nil
}

// openChunk decrypts and checks the integrity of an encrypted chunk, returning
// the underlying plaintext and an error. It accesses peeked bytes from the
// next chunk, to identify the last chunk and validate accordingly.
func (ar *aeadDecrypter) openChunk(data []byte) ([]byte, error) {
	tagLen := ar.aead.Overhead()
	// Restore carried bytes from last call
	chunkExtra := append(ar.peekedBytes, data...)
	// 'chunk' contains encrypted bytes, followed by an authentication tag.
	chunk := chunkExtra[:len(chunkExtra)-tagLen]
	ar.peekedBytes = chunkExtra[len(chunkExtra)-tagLen:]

	adata := append(ar.associatedData, ar.chunkIndex...)
	nonce := ar.computeNextNonce()
	plainChunk, err := ar.aead.Open(nil, nonce, chunk, adata)
	if err != nil {
		return nil, errors.ErrAEADTagVerification
	}
	ar.bytesProcessed += len(plainChunk)
	if err = ar.aeadCrypter.incrementIndex(); err != nil {
		return nil, err
	}
	return plainChunk, nil
}

// Checks the summary tag. It takes into account the total decrypted bytes in
// the associated data. It returns an error, or nil if the tag is valid.
func (ar *aeadDecrypter) validateFinalTag(tag []byte) error {
	// Associated: tag, version, cipher, aead, chunk size, index, and octets
	amountBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(amountBytes, uint64(ar.bytesProcessed))
	adata := append(ar.associatedData, ar.chunkIndex...)
	adata = append(adata, amountBytes...)
	nonce := ar.computeNextNonce()
	if _, err := ar.aead.Open(nil, nonce, tag, adata); err != nil {
		return errors.ErrAEADTagVerification
	}
	return nil
}

// Write encrypts and writes bytes. It encrypts when necessary and caches extra
// plaintext bytes for the next call. When the stream is finished, Close() MUST
// be called to append the final tag.
func (aw *aeadEncrypter) Write(plaintextBytes []byte) (n int, err error) {
	buf := append(aw.cache, plaintextBytes...)
	i := 0
	for ; len(buf)-i >= aw.chunkSize; i += aw.chunkSize {
		encryptedChunk, errSeal := aw.sealChunk(buf[i : i+aw.chunkSize])
		if errSeal != nil {
			return 0, errSeal
		}
		if _, err = aw.writer.Write(encryptedChunk); err != nil {
			return 0, err
		}
	}
	// Cache remaining plaintext for next chunk
	aw.cache = buf[i:]
	return len(plaintextBytes), nil
}

// Close encrypts and writes the remaining cached plaintext if any, appends the
// final authentication tag, and closes the embedded writer. This function MUST
// be called at the end of a stream.
func (aw *aeadEncrypter) Close() (err error) {
	// Encrypt and write whatever is left on the cache (it may be empty)
	if len(aw.cache) > 0 {
		lastEncryptedChunk, err := aw.sealChunk(aw.cache)
		if err != nil {
			return err
		}
		if _, err = aw.writer.Write(lastEncryptedChunk); err != nil {
			return err
		}
	}
	// Compute final tag (associated data: packet tag, version, cipher, aead,
	// chunk size, index, total number of encrypted octets).
	amountBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(amountBytes, uint64(aw.bytesProcessed))
	adata := append(aw.associatedData, aw.chunkIndex...)
	adata = append(adata, amountBytes...)
	nonce := aw.computeNextNonce()
	finalTag := aw.aead.Seal(nil, nonce, nil, adata)
	if _, err = aw.writer.Write(finalTag); err != nil {
		return err
	}
	return aw.writer.Close()
}

// sealChunk encrypts and authenticates the given chunk.
func (aw *aeadEncrypter) sealChunk(data []byte) ([]byte, error) {
	if len(data) > aw.chunkSize {
		return nil, errors.AEADError("chunk exceeds maximum length")
	}
	if aw.associatedData == nil {
		return nil, errors.AEADError("can't seal without headers")
	}
	adata := append(aw.associatedData, aw.chunkIndex...)
	nonce := aw.computeNextNonce()
	encrypted := aw.aead.Seal(nil, nonce, data, adata)
	aw.bytesProcessed += len(data)
	if err := aw.aeadCrypter.incrementIndex(); err != nil {
		return nil, err
	}
	return encrypted, nil
}

// computeNextNonce takes the incremental index and computes an eXclusive OR
// with the least significant 8 bytes of the receivers' initial nonce (see sec.
// 5.16.1 and 5.16.2). It returns the resulting nonce.
func (wo *aeadCrypter) computeNextNonce() (nonce []byte) {
	nonce = make([]byte, 0, len(wo.initialNonce))
	nonce = append(nonce, wo.initialNonce...)
	offset := len(wo.initialNonce) - 8
	for i := 0; i < 8; i++ {
		nonce[i+offset] ^= wo.chunkIndex[i]
	}
	return
}

// incrementIndex performs an integer increment by 1 of the integer represented
// by the slice, modifying it accordingly.
func (wo *aeadCrypter) incrementIndex() error {
	index := wo.chunkIndex
	if len(index) == 0 {
		return errors.AEADError("index has length 0")
	}
	for i := len(index) - 1; i >= 0; i-- {
		if index[i] < 255 {
			index[i]++
			return nil
		}
		index[i] = 0
	}
	return errors.AEADError("cannot further increment index")
}
