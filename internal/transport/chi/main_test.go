package chi

import (
	"os"
	"testing"

	"github.com/kailas-cloud/nurseally/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterHTTPMetrics()
	os.Exit(m.Run())
}
