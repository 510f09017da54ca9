package composition

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// DomainComposition prefixes composition hashes.
// Version suffix enables future algorithm migration.
const DomainComposition = "chemcomp/composition/v1"

// speciesNamespace is the UUIDv5 namespace for species-set keys.
var speciesNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/chemcomp/species"))

// ID returns the content-addressed identity of the exact composition
// (species and counts): SHA256(domain + 0x00 + canonical JSON), hex encoded.
//
// Compositions with equal counts share an ID; Na2Cl2 and NaCl do not.
func (c Composition) ID() string {
	h := sha256.New()
	h.Write([]byte(DomainComposition))
	h.Write([]byte{0x00})
	h.Write(c.MarshalCanonical())
	return hex.EncodeToString(h.Sum(nil))
}

// SpeciesKey returns a name-based (version 5) UUID of the species set.
// Every composition over the same species shares the key regardless of
// counts, so YBa2Cu3O7 and Y2Ba4Cu6O14 collide by construction.
func (c Composition) SpeciesKey() uuid.UUID {
	return uuid.NewSHA1(speciesNamespace, []byte(c.SpeciesHex()))
}
