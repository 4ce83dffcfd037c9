package device

import (
	"os"
	"testing"

	"github.com/kriansa/drive-pi/internal/log"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	log.Setup(false)
	os.Exit(m.Run())
}
