// Copyright (C) 2019 ProtonTech AG

package packet

// Only currently defined version
const aeadEncryptedVersion = 1

// AEADConfig collects a number of AEAD parameters along with sensible defaults.
// A nil AEADConfig is valid and results in all default values.
type AEADConfig struct {
	// The AEAD mode of operation.
	DefaultMode AEADMode
	// Amount of octets in each chunk of data, according to the formula
	// chunkSize = ((uint64_t)1 << (chunkSizeByte + 6))
	ChunkSizeByte byte
}

// Mode returns the AEAD mode of operation.
func (conf *AEADConfig) Mode() AEADMode {
	// If no preference is specified, EAX is used (is the first choice, see
	// https://datatracker.ietf.org/doc/html/draft-ietf-openpgp-rfc4880bis#section-9.6)
	if conf == nil || conf.DefaultMode == 0 {
		return AEADModeEAX
	}

	mode := conf.DefaultMode
	if mode != AEADModeEAX && mode != AEADModeOCB {
		panic("AEAD mode unsupported")
	}
	return mode
}

// ChunkSizeByte returns the byte indicating the chunk size. The effective
// chunk size is computed with the formula uint64(1) << (chunkSizeByte + 6)
// limiting to 16 = 4 MiB
// https://www.ietf.org/archive/id/draft-ietf-openpgp-crypto-refresh-07.html#section-5.13.2
func (conf *AEADConfig) ChunkSizeByteValue() byte {
	if conf == nil || conf.ChunkSizeByte == 0 {
		return 12 // 1 << (12 + 6) == 262144 bytes
	}

	chunkSizeByte := conf.ChunkSizeByte
	if chunkSizeByte > 16 {
		chunkSizeByte = 16
	}

	return chunkSizeByte
}
