package o3d

// CipherState is the running state threaded through the vertex cipher while
// it walks the vertex list.
type CipherState struct {
	Seed    uint32
	PosSeed uint32
}

// VertexCipher transforms vertices of an encrypted O3D file. The concrete
// algorithm is proprietary and deliberately not part of this package;
// implementations are injected by the host. Decrypt and Encrypt must be
// exact inverses under the same key, seed mode and vertex count.
type VertexCipher interface {
	// Init derives the initial state from the file's encryption key, the
	// alternate-seed flag and the container version.
	Init(key uint32, altSeed bool, version uint8) CipherState

	// Decrypt maps a stored vertex to its plain form and advances the state.
	// total is the number of vertices in the section.
	Decrypt(v Vertex, key uint32, altSeed bool, st CipherState, total int) (Vertex, CipherState)

	// Encrypt is the inverse of Decrypt.
	Encrypt(v Vertex, key uint32, altSeed bool, st CipherState, total int) (Vertex, CipherState)
}

// IdentityCipher passes vertices through unchanged. It is the fallback when
// no real cipher implementation is available: geometry of encrypted files
// stays as stored, which is wrong but recoverable, and the codec emits a
// warning diagnostic instead of failing.
type IdentityCipher struct{}

// Init returns a zero state.
func (IdentityCipher) Init(key uint32, altSeed bool, version uint8) CipherState {
	return CipherState{}
}

// Decrypt returns the vertex unchanged.
func (IdentityCipher) Decrypt(v Vertex, key uint32, altSeed bool, st CipherState, total int) (Vertex, CipherState) {
	return v, st
}

// Encrypt returns the vertex unchanged.
func (IdentityCipher) Encrypt(v Vertex, key uint32, altSeed bool, st CipherState, total int) (Vertex, CipherState) {
	return v, st
}
