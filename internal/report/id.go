package report

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// IDLength is fixed per deployment. Changing it orphans every previously
// issued report link, since returning clients land on a different id.
const IDLength = 12

// DeriveID maps a client key and server salt to a stable report identifier.
// With both present the result is deterministic, so a returning client's
// re-upload lands on the same stored record. Without either input the id is
// random and the client gets a fresh record.
func DeriveID(clientKey, salt string) string {
	if clientKey != "" && salt != "" {
		sum := sha256.Sum256([]byte(salt + ":" + clientKey))
		return hex.EncodeToString(sum[:])[:IDLength]
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return random[:IDLength]
}
