package vault

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	dErrors "haulpass/pkg/domain-errors"
)

// argon2id parameters for deriving the sealing key from the passphrase.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

const (
	saltSize  = 16
	nonceSize = 24
)

// FileVault is an encrypted on-disk keyring: a JSON map of handle to Ed25519
// seed, sealed with NaCl secretbox under an argon2id-derived key. One file
// per actor role.
type FileVault struct {
	path     string
	password string

	mu   sync.Mutex
	keys map[string]string // handle -> hex-encoded seed
	salt []byte
}

type fileEnvelope struct {
	Salt   string `json:"salt"`
	Nonce  string `json:"nonce"`
	Sealed string `json:"sealed"`
}

// OpenFile opens (or prepares to create) the vault file at path. A missing
// file is not an error: the keyring starts empty and is written on the first
// GenerateKey. A present but undecryptable file is a vault error.
func OpenFile(path, password string) (*FileVault, error) {
	v := &FileVault{
		path:     path,
		password: password,
		keys:     make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeVault, "read vault file")
	}

	if err := v.unseal(raw); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *FileVault) unseal(raw []byte) error {
	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return dErrors.Wrap(err, dErrors.CodeVault, "vault file is not valid JSON")
	}

	salt, err := hex.DecodeString(env.Salt)
	if err != nil || len(salt) != saltSize {
		return dErrors.New(dErrors.CodeVault, "vault file salt is corrupt")
	}
	nonceRaw, err := hex.DecodeString(env.Nonce)
	if err != nil || len(nonceRaw) != nonceSize {
		return dErrors.New(dErrors.CodeVault, "vault file nonce is corrupt")
	}
	sealed, err := hex.DecodeString(env.Sealed)
	if err != nil {
		return dErrors.New(dErrors.CodeVault, "vault file payload is corrupt")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], nonceRaw)
	key := v.derive(salt)

	plain, ok := secretbox.Open(nil, sealed, &nonce, &key)
	if !ok {
		return dErrors.New(dErrors.CodeVault, "vault cannot be opened with the configured passphrase")
	}

	keys := make(map[string]string)
	if err := json.Unmarshal(plain, &keys); err != nil {
		return dErrors.Wrap(err, dErrors.CodeVault, "vault keyring is corrupt")
	}

	v.keys = keys
	v.salt = salt
	return nil
}

func (v *FileVault) derive(salt []byte) [32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(v.password), salt, kdfTime, kdfMemory, kdfThreads, 32))
	return key
}

// persist re-seals the keyring and writes it atomically.
func (v *FileVault) persist() error {
	if v.salt == nil {
		v.salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, v.salt); err != nil {
			return dErrors.Wrap(err, dErrors.CodeVault, "generate vault salt")
		}
	}

	plain, err := json.Marshal(v.keys)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeVault, "encode vault keyring")
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return dErrors.Wrap(err, dErrors.CodeVault, "generate vault nonce")
	}

	key := v.derive(v.salt)
	sealed := secretbox.Seal(nil, plain, &nonce, &key)

	env := fileEnvelope{
		Salt:   hex.EncodeToString(v.salt),
		Nonce:  hex.EncodeToString(nonce[:]),
		Sealed: hex.EncodeToString(sealed),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeVault, "encode vault file")
	}

	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return dErrors.Wrap(err, dErrors.CodeVault, "write vault file")
	}
	if err := os.Rename(tmp, v.path); err != nil {
		return dErrors.Wrap(err, dErrors.CodeVault, "write vault file")
	}
	return nil
}

// GenerateKey creates a new Ed25519 key pair, persists the sealed keyring,
// and returns the handle and public key.
func (v *FileVault) GenerateKey(ctx context.Context) (string, ed25519.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeVault, "generate key pair")
	}

	handle := "key-" + uuid.NewString()[:8]
	v.keys[handle] = hex.EncodeToString(priv.Seed())

	if err := v.persist(); err != nil {
		delete(v.keys, handle)
		return "", nil, err
	}
	return handle, pub, nil
}

// PublicKey returns the public key for a handle.
func (v *FileVault) PublicKey(ctx context.Context, handle string) (ed25519.PublicKey, error) {
	priv, err := v.private(handle)
	if err != nil {
		return nil, err
	}
	return priv.Public().(ed25519.PublicKey), nil
}

// Sign signs data with the key behind the handle.
func (v *FileVault) Sign(ctx context.Context, handle string, data []byte) ([]byte, error) {
	priv, err := v.private(handle)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(priv, data), nil
}

func (v *FileVault) private(handle string) (ed25519.PrivateKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	seedHex, ok := v.keys[handle]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeVault, "unknown key handle %q", handle)
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, dErrors.Newf(dErrors.CodeVault, "stored key %q is corrupt", handle)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

var _ Vault = (*FileVault)(nil)

// Path returns the backing file location, for logging.
func (v *FileVault) Path() string { return v.path }
