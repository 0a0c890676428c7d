package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
)

// Hasher produces and verifies argon2id password hashes in the PHC
// string format.
type Hasher struct {
	memoryKB    uint32
	time        uint32
	parallelism uint8
	saltLen     int
	keyLen      uint32
}

func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{
		memoryKB:    uint32(cfg.ArgonMemoryKB),
		time:        uint32(cfg.ArgonTime),
		parallelism: uint8(cfg.ArgonParallelism),
		saltLen:     cfg.ArgonSaltLen,
		keyLen:      uint32(cfg.ArgonKeyLen),
	}
}

func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "generate salt")
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memoryKB, h.parallelism, h.keyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memoryKB, h.time, h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether password matches the encoded hash. The hash
// carries its own parameters so old hashes stay verifiable after
// config changes.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.New(errors.CodeInternal, "malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "parse hash version")
	}
	if version != argon2.Version {
		return false, errors.New(errors.CodeInternal, "unsupported argon2 version")
	}

	var memoryKB, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memoryKB, &iterations, &parallelism); err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "parse hash params")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "decode salt")
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "decode hash")
	}

	key := argon2.IDKey([]byte(password), salt, iterations, memoryKB, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}
