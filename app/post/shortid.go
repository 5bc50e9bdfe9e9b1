package post

import (
	"crypto/sha256"
	"math/big"
)

// Base-58 alphabet omitting the visually confusable 0, O, I and l.
const base58Alphabet = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

const shortIDDigestBytes = 12

// ShortID derives a deterministic, URL-safe identifier from a seed string:
// the first 12 bytes of the seed's SHA-256 digest, base-58 encoded.
// The same seed always yields the same identifier, which makes it usable
// as both primary key and idempotency key.
func ShortID(seed string) string {
	digest := sha256.Sum256([]byte(seed))
	return toBase58(digest[:shortIDDigestBytes])
}

func toBase58(buf []byte) string {
	num := new(big.Int).SetBytes(buf)
	radix := big.NewInt(58)
	rem := new(big.Int)

	var out []byte
	for num.Sign() > 0 {
		num.DivMod(num, radix, rem)
		out = append(out, base58Alphabet[rem.Int64()])
	}

	if len(out) == 0 {
		return "1"
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
