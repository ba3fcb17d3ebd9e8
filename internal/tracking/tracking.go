// Package tracking computes shipment tracking digests.
package tracking

import (
	"encoding/binary"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"golang.org/x/crypto/sha3"
)

// Digest is Keccak-256 over the shipment id encoded as a 32-byte
// big-endian word, so external verifiers can recompute it from the id alone.
func Digest(shipmentID uint64) domain.TrackingHash {
	var word [32]byte
	binary.BigEndian.PutUint64(word[24:], shipmentID)

	h := sha3.NewLegacyKeccak256()
	h.Write(word[:])

	var out domain.TrackingHash
	copy(out[:], h.Sum(nil))
	return out
}

// Verify reports whether hash is the digest of shipmentID
func Verify(shipmentID uint64, hash domain.TrackingHash) bool {
	return Digest(shipmentID) == hash
}
