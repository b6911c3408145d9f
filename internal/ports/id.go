package ports

import (
	"encoding/hex"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewID() string
}

// RandomIDGenerator issues UUIDv4 identifiers. If the system entropy source
// fails it falls back to a timestamp plus random suffix, which is unique
// enough within one device's history; identities are only ever compared for
// equality inside a single local store.
type RandomIDGenerator struct{}

func (RandomIDGenerator) NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		suffix := make([]byte, 8)
		_, _ = rand.Read(suffix)
		return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + hex.EncodeToString(suffix)
	}

	return id.String()
}
