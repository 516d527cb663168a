package textbookrsa

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/c-w-inf/myrsa/numtheory"
)

var ErrMessageTooLong = errors.New("message too long for key")

// EncryptWith returns value^exponent mod n. Encryption passes e and
// decryption passes d; value must lie in [0, n).
func EncryptWith(n, exponent, value *big.Int) (*big.Int, error) {
	if value.Sign() < 0 || value.Cmp(n) >= 0 {
		return nil, fmt.Errorf("%w: value must be in [0, n)", ErrOutOfRange)
	}
	return numtheory.ModPow(value, exponent, n)
}

// EncryptWith raises value to exponent modulo the key's n.
func (k *KeyPair) EncryptWith(exponent, value *big.Int) (*big.Int, error) {
	return EncryptWith(k.n, exponent, value)
}

// Encrypt encrypts m with the public exponent: c = m^e mod n.
func (k *KeyPair) Encrypt(m *big.Int) (*big.Int, error) {
	return EncryptWith(k.n, k.e, m)
}

// Decrypt decrypts c with the private exponent: m = c^d mod n.
func (k *KeyPair) Decrypt(c *big.Int) (*big.Int, error) {
	return EncryptWith(k.n, k.d, c)
}

// Encrypt encrypts m with the public key: c = m^e mod n.
func (pub PublicKey) Encrypt(m *big.Int) (*big.Int, error) {
	return EncryptWith(pub.N, pub.E, m)
}

// MaxMsgSize returns the longest byte message PrepareMsg accepts for n.
// Every value of that many bytes is strictly below n.
func MaxMsgSize(n *big.Int) int {
	return (n.BitLen() - 1) / 8
}

// PrepareMsg turns raw bytes into the integer they encode big-endian. No
// padding is added, so leading zero bytes do not survive ExtractMsg.
func PrepareMsg(msg []byte, n *big.Int) (*big.Int, error) {
	if maxsize := MaxMsgSize(n); len(msg) > maxsize {
		return nil, fmt.Errorf("%w: %d bytes, at most %d for a %d bit modulus", ErrMessageTooLong, len(msg), maxsize, n.BitLen())
	}
	return new(big.Int).SetBytes(msg), nil
}

// ExtractMsg reverses PrepareMsg.
func ExtractMsg(m *big.Int) []byte {
	return m.Bytes()
}
