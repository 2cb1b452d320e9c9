package xid

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// New returns prefix_<12 random chars>, e.g. "trx_4k9q0z1m2b7c".
func New(prefix string) string {
	id, err := gonanoid.Generate(alphabet, 12)
	if err != nil {
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + id
}
