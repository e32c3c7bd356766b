// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package algorithm

import (
	"crypto"
	"fmt"
	"hash"
)

// Hash is an official hash function algorithm. See RFC 4880, section 9.4.
type Hash interface {
	// Id returns the algorithm ID, as a byte, of Hash.
	Id() uint8
	// Available reports whether the given hash function is linked into the binary.
	Available() bool
	// HashFunc simply returns the value of h so that Hash implements SignerOpts.
	HashFunc() crypto.Hash
	// New returns a new hash.Hash calculating the given hash function. New
	// panics if the hash function is not linked into the binary.
	New() hash.Hash
	// Size returns the length, in bytes, of a digest resulting from the given
	// hash function. It doesn't require that the hash function in question be
	// linked into the program.
	Size() int
	// String is the name of the hash function corresponding to the given
	// OpenPGP hash id.
	String() string
}

// The following vars mirror the OpenPGP standard (RFC 4880).
var (
	MD5       Hash = cryptoHash{1, crypto.MD5}
	SHA1      Hash = cryptoHash{2, crypto.SHA1}
	RIPEMD160 Hash = cryptoHash{3, crypto.RIPEMD160}
	SHA256    Hash = cryptoHash{8, crypto.SHA256}
	SHA384    Hash = cryptoHash{9, crypto.SHA384}
	SHA512    Hash = cryptoHash{10, crypto.SHA512}
	SHA224    Hash = cryptoHash{11, crypto.SHA224}
	SHA3_256  Hash = cryptoHash{12, crypto.SHA3_256}
	SHA3_512  Hash = cryptoHash{14, crypto.SHA3_512}
)

// HashById represents the different hash functions specified for OpenPGP. See
// http://www.iana.org/assignments/pgp-parameters/pgp-parameters.xhtml#pgp-parameters-14
var (
	HashById = map[uint8]Hash{
		SHA256.Id():   SHA256,
		SHA384.Id():   SHA384,
		SHA512.Id():   SHA512,
		SHA224.Id():   SHA224,
		SHA3_256.Id(): SHA3_256,
		SHA3_512.Id(): SHA3_512,
	}
)

// hashByIdWithSha1 extends HashById with the legacy hash functions that are
// accepted in string-to-key transformations and old signatures, but are
// never selected for new material.
var hashByIdWithSha1 = map[uint8]Hash{
	MD5.Id():       MD5,
	SHA1.Id():      SHA1,
	RIPEMD160.Id(): RIPEMD160,
	SHA256.Id():    SHA256,
	SHA384.Id():    SHA384,
	SHA512.Id():    SHA512,
	SHA224.Id():    SHA224,
	SHA3_256.Id():  SHA3_256,
	SHA3_512.Id():  SHA3_512,
}

// cryptoHash contains pairs relating OpenPGP's hash identifier with
// Go's crypto.Hash type. See RFC 4880, section 9.4.
type cryptoHash struct {
	id uint8
	crypto.Hash
}

// Id returns the algorithm ID, as a byte, of cryptoHash.
func (h cryptoHash) Id() uint8 {
	return h.id
}

// HashIdToHash returns a crypto.Hash which corresponds to the given OpenPGP
// hash id.
func HashIdToHash(id byte) (crypto.Hash, bool) {
	if hash, ok := HashById[id]; ok {
		return hash.HashFunc(), true
	}
	return 0, false
}

// HashIdToHashWithSha1 returns a crypto.Hash which corresponds to the given
// OpenPGP hash id, allowing SHA1 and the other legacy hash functions.
func HashIdToHashWithSha1(id byte) (crypto.Hash, bool) {
	if hash, ok := hashByIdWithSha1[id]; ok {
		return hash.HashFunc(), true
	}
	return 0, false
}

// HashIdToString returns the name of the hash function corresponding to the
// given OpenPGP hash id.
func HashIdToString(id byte) (string, bool) {
	if hash, ok := HashById[id]; ok {
		return hash.String(), true
	}
	return "", false
}

// HashToHashId returns an OpenPGP hash id which corresponds the given Hash.
func HashToHashId(h crypto.Hash) (id byte, ok bool) {
	for id, hash := range HashById {
		if hash.HashFunc() == h {
			return id, true
		}
	}
	return 0, false
}

// HashToHashIdWithSha1 returns an OpenPGP hash id which corresponds the given
// Hash, allowing instances of SHA1 and the other legacy hash functions.
func HashToHashIdWithSha1(h crypto.Hash) (id byte, ok bool) {
	for id, hash := range hashByIdWithSha1 {
		if hash.HashFunc() == h {
			return id, true
		}
	}
	return 0, false
}

func (h cryptoHash) String() string {
	switch h.Hash {
	case crypto.MD5:
		return "MD5"
	case crypto.SHA1:
		return "SHA1"
	case crypto.RIPEMD160:
		return "RIPEMD160"
	case crypto.SHA256:
		return "SHA256"
	case crypto.SHA384:
		return "SHA384"
	case crypto.SHA512:
		return "SHA512"
	case crypto.SHA224:
		return "SHA224"
	case crypto.SHA3_256:
		return "SHA3-256"
	case crypto.SHA3_512:
		return "SHA3-512"
	default:
		panic(fmt.Sprintf("Unsupported hash function %d", h.Hash))
	}
}
