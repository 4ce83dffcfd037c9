package mount

import (
	"os"
	"testing"

	"github.com/kriansa/drive-pi/internal/log"
)

func TestMain(m *testing.M) {
	log.Setup(false)
	os.Exit(m.Run())
}
