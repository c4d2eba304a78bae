package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidCredential is returned when a private key string cannot be parsed.
var ErrInvalidCredential = errors.New("invalid private key")

// Signature is the output of GenerateSignature.
type Signature struct {
	Contract  common.Address
	User      common.Address
	Digest    common.Hash
	Signer    common.Address
	Signature []byte // 65 bytes, R || S || V with V in {27, 28}
}

// Hex returns the 0x-prefixed signature.
func (s *Signature) Hex() string { return hexutil.Encode(s.Signature) }

// ParseCredential parses a hex private key, with or without 0x.
func ParseCredential(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(normaliseHexKey(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return key, nil
}

// GenerateSignature hashes (contract, user) with CanonicalDigest and signs the
// 32 digest bytes with the credential. Inputs are validated before signing.
func GenerateSignature(credential, contract, user string) (*Signature, error) {
	contractAddr, err := NormalizeAddress(contract)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}
	userAddr, err := NormalizeAddress(user)
	if err != nil {
		return nil, fmt.Errorf("user address: %w", err)
	}
	key, err := ParseCredential(credential)
	if err != nil {
		return nil, err
	}

	digest, err := CanonicalDigest(contract, user)
	if err != nil {
		return nil, err
	}

	sig, err := SignMessage(key, digest.Bytes())
	if err != nil {
		return nil, err
	}

	return &Signature{
		Contract:  contractAddr,
		User:      userAddr,
		Digest:    digest,
		Signer:    addressOf(key),
		Signature: sig,
	}, nil
}

// SignDigest signs the EIP-191 hash of the 32 digest bytes with credential.
func SignDigest(credential string, digest common.Hash) ([]byte, error) {
	key, err := ParseCredential(credential)
	if err != nil {
		return nil, err
	}
	return SignMessage(key, digest.Bytes())
}

// RecoverDigestSigner returns the address that produced sig over digest.
func RecoverDigestSigner(digest common.Hash, sig []byte) (common.Address, error) {
	return VerifyMessage(digest.Bytes(), sig)
}

// RecoverSigner recovers who signed CanonicalDigest(contract, user).
func RecoverSigner(contract, user, sigHex string) (common.Address, error) {
	digest, err := CanonicalDigest(contract, user)
	if err != nil {
		return common.Address{}, err
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature hex: %w", err)
	}
	return RecoverDigestSigner(digest, sig)
}

// SignMessage signs a message using EIP-191 (personal_sign).
// The message is prefixed with "\x19Ethereum Signed Message:\n<len>" before hashing.
// Returns a 65-byte signature (R || S || V).
func SignMessage(key *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrInvalidCredential
	}
	sig, err := crypto.Sign(eip191Hash(message), key)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}

	// Adjust V from 0/1 to 27/28 for Ethereum compatibility.
	sig[64] += 27

	return sig, nil
}

// VerifyMessage recovers the signer address from an EIP-191 signature.
func VerifyMessage(message, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: expected 65 bytes, got %d", len(sig))
	}

	// Adjust V from 27/28 back to 0/1 for ecrecover.
	recoverSig := make([]byte, 65)
	copy(recoverSig, sig)
	if recoverSig[64] >= 27 {
		recoverSig[64] -= 27
	}

	pubKey, err := crypto.SigToPub(eip191Hash(message), recoverSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// eip191Hash returns the Keccak-256 hash of the EIP-191 prefixed message.
func eip191Hash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256([]byte(prefix), message)
}

func addressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
