package refcode

import (
	"fmt"
	"strings"
	"sync"

	sf "github.com/bwmarrin/snowflake"
)

var (
	node     *sf.Node
	initOnce sync.Once
	initErr  error
)

// Init creates the snowflake node used for reference codes. machineID must
// be unique per instance (0-1023).
func Init(machineID int64) error {
	initOnce.Do(func() {
		node, initErr = sf.NewNode(machineID)
	})
	return initErr
}

// Generate returns a unique reference code like "LP-K3J9X2M4". Codes are
// snowflake ids in base32, so they stay sortable by creation time.
func Generate() (string, error) {
	if node == nil {
		return "", fmt.Errorf("refcode node not initialized")
	}
	id := node.Generate()
	return "LP-" + strings.ToUpper(id.Base32()), nil
}
