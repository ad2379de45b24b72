package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/provider"
)

// goldenCase one file under testdata/golden
type goldenCase struct {
	Raw    string                  `json:"raw"`
	Expect models.ValidationResult `json:"expect"`
}

func TestGoldenResults(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "golden", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	p := provider.NewLocalHeuristicProvider(nil)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)

			var gc goldenCase
			require.NoError(t, json.Unmarshal(data, &gc))

			got := BuildValidationResult(context.Background(), p, gc.Raw)
			if diff := cmp.Diff(&gc.Expect, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("BuildValidationResult(%q) mismatch (-want +got):\n%s", gc.Raw, diff)
			}
		})
	}
}
