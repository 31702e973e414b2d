// Package keyinfo inspects SSH public keys in authorized_keys format
// in-process, without shelling out to ssh-keygen. It reports the same
// fields as `ssh-keygen -l`: size, SHA256 fingerprint, comment, and a
// display algorithm label.
package keyinfo

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

// Key describes one public key.
type Key struct {
	Type        string // wire-format name, e.g. "ssh-ed25519"
	Algorithm   string // display label, e.g. "ED25519"
	Bits        int    // key size; 0 when it cannot be derived
	Fingerprint string // SHA256:... fingerprint
	Comment     string
}

// labels maps wire-format key type names to the labels ssh-keygen prints.
var labels = map[string]string{
	ssh.KeyAlgoED25519:    "ED25519",
	ssh.KeyAlgoSKED25519:  "ED25519-SK",
	ssh.KeyAlgoRSA:        "RSA",
	ssh.KeyAlgoDSA:        "DSA",
	ssh.KeyAlgoECDSA256:   "ECDSA",
	ssh.KeyAlgoECDSA384:   "ECDSA",
	ssh.KeyAlgoECDSA521:   "ECDSA",
	ssh.KeyAlgoSKECDSA256: "ECDSA-SK",
}

// Label returns the display label for a wire-format key type name.
// Unknown types come back unchanged.
func Label(wireType string) string {
	if label, ok := labels[wireType]; ok {
		return label
	}
	return wireType
}

// Parse reads one authorized_keys-format line.
func Parse(data []byte) (Key, error) {
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return Key{}, errors.WrapWithCode(err, errors.ErrKeygen,
			"Couldn't parse the public key",
			"The file may be corrupted; regenerate the key pair")
	}

	return Key{
		Type:        pub.Type(),
		Algorithm:   Label(pub.Type()),
		Bits:        bitSize(pub),
		Fingerprint: ssh.FingerprintSHA256(pub),
		Comment:     comment,
	}, nil
}

// ParseFile reads and parses a public key file.
func ParseFile(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Key{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read public key: "+path,
			"Check that the file exists and is readable")
	}
	key, err := Parse(data)
	if err != nil {
		return Key{}, errors.WrapWithCode(err, errors.ErrKeygen,
			"Couldn't parse public key "+path,
			"The file may be corrupted; regenerate the key pair")
	}
	return key, nil
}

// bitSize derives the key size from the underlying crypto key. Certificate
// and unknown key kinds report 0.
func bitSize(pub ssh.PublicKey) int {
	cryptoKey, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return 0
	}
	switch k := cryptoKey.CryptoPublicKey().(type) {
	case ed25519.PublicKey:
		return ed25519.PublicKeySize * 8
	case *rsa.PublicKey:
		return k.N.BitLen()
	case *ecdsa.PublicKey:
		return k.Curve.Params().BitSize
	default:
		return 0
	}
}
