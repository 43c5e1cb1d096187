package identity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Caller identities are opaque strings; when both sides parse as hex
// addresses the comparison is checksum-insensitive.
func Equal(a, b string) bool {
	if common.IsHexAddress(a) && common.IsHexAddress(b) {
		return common.HexToAddress(a) == common.HexToAddress(b)
	}
	return a == b
}

// Recover returns the address that produced sigHex over body using the
// EIP-191 personal_sign scheme. Both 0/1 and 27/28 recovery ids are
// accepted.
func Recover(body []byte, sigHex string) (string, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return "", fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != 65 {
		return "", fmt.Errorf("invalid signature length: %d", len(sig))
	}
	if sig[64] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(hashPersonal(body), sig)
	if err != nil {
		return "", fmt.Errorf("signature recovery failed: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// Sign produces a personal_sign signature over body with the given hex
// private key. Used by clients and tests; the server only recovers.
func Sign(body []byte, privateKeyHex string) (string, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	sig, err := crypto.Sign(hashPersonal(body), key)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

// AddressOf derives the hex address for a private key.
func AddressOf(privateKeyHex string) (string, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

func hashPersonal(msg []byte) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	return crypto.Keccak256([]byte(prefixed))
}
