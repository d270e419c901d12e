//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "crate-sizer-api"
	ConsumerName = "booking-portal"

	StateCatalogBaseline   = "default crate catalog is published"
	StateAssessmentExists  = "assessment with id 1 exists"
	StateAssessmentMissing = "no assessments are recorded"
)

const (
	ExistingAssessmentID int64 = 1
	MissingAssessmentID  int64 = 404
	ExampleBookingRef          = "BK-PACT-1"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file path shared by the consumer and provider tests.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleMeasurements is a medium dog that fits the Giant crate.
func ExampleMeasurements() map[string]any {
	return map[string]any{
		"lengthA":     60.0,
		"elbowB":      30.0,
		"widthC":      35.0,
		"heightD":     55.0,
		"isSnubNosed": false,
	}
}

func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
