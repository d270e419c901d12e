package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cratehttpmapper "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/http/mapper"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalculateCommand(t *testing.T) {
	out, err := run(t, "calculate", "--length-a", "60", "--elbow-b", "30", "--width-c", "35", "--height-d", "55")
	require.NoError(t, err)
	assert.Contains(t, out, "minimum internal: 75 x 70 x 58 cm")
	assert.Contains(t, out, "(sky-700)")
}

func TestCalculateCommand_JSONInches(t *testing.T) {
	out, err := run(t, "calculate", "--length-a", "10", "--elbow-b", "4", "--width-c", "5", "--height-d", "9", "--unit", "in", "--json")
	require.NoError(t, err)
	var response cratehttpmapper.CalculateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.True(t, response.Complete)
	assert.Equal(t, "in", response.Recommendation.Unit)
	assert.Equal(t, "sky-100", response.Recommendation.RecommendedCrate.ID)
}

func TestCalculateCommand_Incomplete(t *testing.T) {
	out, err := run(t, "calculate", "--length-a", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "measurements incomplete")

	_, err = run(t, "calculate", "--length-a", "60", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elbowB")
	assert.Contains(t, err.Error(), "heightD")
}

func TestCalculateCommand_CustomBuild(t *testing.T) {
	out, err := run(t, "calculate", "--length-a", "110", "--elbow-b", "40", "--width-c", "40", "--height-d", "80", "--snub-nosed")
	require.NoError(t, err)
	assert.Contains(t, out, "custom build needed")
}

func TestCatalogCommand(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "sky-100")
	assert.Contains(t, out, "48 x 32 x 36")

	_, err = run(t, "catalog", "--unit", "furlong")
	require.Error(t, err)
}
