package merkle

// Root builds the Merkle root for a multi-fill order from the per-slice
// hashed secrets. Leaf i commits to (i, hashedSecrets[i]); levels combine as
// sorted pairs, and an unpaired node at a level combines with a zero hash.
// Makers compute this root off-chain to derive the order hashlock.
func Root(hashedSecrets [][32]byte) [32]byte {
	if len(hashedSecrets) == 0 {
		return [32]byte{}
	}
	level := leaves(hashedSecrets)
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0]
}

// ProofFor builds the inclusion proof for the slice at the given index.
func ProofFor(hashedSecrets [][32]byte, index uint64) Proof {
	proof := Proof{Index: index, HashedSecret: hashedSecrets[index]}
	level := leaves(hashedSecrets)
	pos := int(index)
	for len(level) > 1 {
		if pos%2 == 0 {
			if pos+1 < len(level) {
				proof.Siblings = append(proof.Siblings, level[pos+1])
			} else {
				proof.Siblings = append(proof.Siblings, [32]byte{})
			}
		} else {
			proof.Siblings = append(proof.Siblings, level[pos-1])
		}
		level = nextLevel(level)
		pos /= 2
	}
	return proof
}

func leaves(hashedSecrets [][32]byte) [][32]byte {
	out := make([][32]byte, len(hashedSecrets))
	for i, hs := range hashedSecrets {
		out[i] = HashLeaf(uint64(i), hs)
	}
	return out
}

func nextLevel(level [][32]byte) [][32]byte {
	out := make([][32]byte, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 < len(level) {
			out = append(out, combine(level[i], level[i+1]))
		} else {
			out = append(out, combine(level[i], [32]byte{}))
		}
	}
	return out
}
