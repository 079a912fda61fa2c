// Package hash provides the checksum primitives used by lsmkit's on-disk
// formats.
//
// # CRC32-Castagnoli (CRC32C)
//
// All checksums in lsmkit use CRC32-Castagnoli (CRC32C) which provides:
//
//   - Hardware acceleration on x86 (SSE4.2) and ARM (CRC extension)
//   - Superior error detection compared to CRC32-IEEE
//   - Industry standard for storage formats (iSCSI, Btrfs, LSM engines)
//
// # Masking
//
// Checksums stored inside files are masked with Mask before being written.
// A table file contains checksums of regions that themselves contain
// checksums; masking keeps a checksum-over-checksums from degenerating into
// the identity. Readers call Unmask (or compare against Mask(computed))
// before verifying.
//
// For one-shot checksums:
//
//	stored := hash.Mask(hash.CRC32C(data))
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	stored := hash.Mask(h.Sum32())
package hash
