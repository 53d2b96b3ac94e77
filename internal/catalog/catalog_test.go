package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wildaware/internal/model"
)

func TestSeed_IsValid(t *testing.T) {
	cat := Seed()
	require.NoError(t, cat.Validate())
	assert.Len(t, cat.Species, 3)
	assert.Len(t, cat.Guidelines, 3)
	assert.Len(t, cat.RescueOrgs, 5)
}

func TestSeed_ReturnsFreshCopy(t *testing.T) {
	a := Seed()
	a.Species[0].Keywords[0] = "changed"
	assert.Equal(t, "snake", Seed().Species[0].Keywords[0])
}

func TestSpeciesByNameAndGuideline(t *testing.T) {
	cat := Seed()

	sp, ok := cat.SpeciesByName("  Stray DOG ")
	require.True(t, ok)
	assert.Equal(t, 3, sp.ID)

	g, ok := cat.GuidelineFor(sp.ID)
	require.True(t, ok)
	assert.Contains(t, g.FirstAid, "dog bites")

	_, ok = cat.SpeciesByName("unknown")
	assert.False(t, ok)
	_, ok = cat.GuidelineFor(99)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		species []model.Species
		wantErr string
	}{
		{"empty", nil, "no species"},
		{"missing name", []model.Species{{RiskLevel: model.RiskLow}}, "common_name is required"},
		{"reserved name", []model.Species{{CommonName: "Unknown", RiskLevel: model.RiskLow}}, "reserved"},
		{"duplicate", []model.Species{
			{CommonName: "Snake", RiskLevel: model.RiskLow},
			{CommonName: "snake", RiskLevel: model.RiskLow},
		}, "duplicate"},
		{"bad risk", []model.Species{{CommonName: "Snake", RiskLevel: "extreme"}}, "invalid risk_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Catalog{Species: tt.species}).Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNormalize(t *testing.T) {
	cat := &Catalog{
		Species:    []model.Species{{CommonName: "Snake", RiskLevel: model.RiskLow, Keywords: []string{" Cobra", "", "HISS"}}},
		RescueOrgs: []model.RescueOrg{{Name: "X", SpeciesSupported: []string{" Snake "}}},
	}
	cat.Normalize()
	assert.Equal(t, []string{"cobra", "hiss"}, cat.Species[0].Keywords)
	assert.Equal(t, []string{"snake"}, cat.RescueOrgs[0].SpeciesSupported)
}

const testCatalogYAML = `species:
  - id: 1
    common_name: Cobra
    risk_level: high
    keywords: [Cobra, Hood]
rescue_orgs:
  - id: 1
    name: Forest Helpline
    city: Statewide
    phone: "1800"
    hours: 24x7
    species_supported: [cobra]
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Cobra", cat.Species[0].CommonName)
	assert.Equal(t, []string{"cobra", "hood"}, cat.Species[0].Keywords)
	assert.Equal(t, "Forest Helpline", cat.RescueOrgs[0].Name)

	require.NoError(t, os.WriteFile(path, []byte("species: []\n"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFileProvider_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))

	p, err := NewFileProvider(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	watchDone := make(chan error, 1)
	go func() { watchDone <- p.Watch(ctx) }()
	defer func() {
		cancel()
		<-watchDone
	}()

	// Give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)

	updated := `species:
  - id: 7
    common_name: Krait
    risk_level: high
    keywords: [krait]
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		cat, _ := p.Catalog(context.Background())
		return len(cat.Species) == 1 && cat.Species[0].CommonName == "Krait"
	}, 3*time.Second, 20*time.Millisecond)

	// A broken write keeps the last good snapshot
	require.NoError(t, os.WriteFile(path, []byte("species: [\n"), 0o644))
	time.Sleep(200 * time.Millisecond)
	cat, err := p.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Krait", cat.Species[0].CommonName)
}

func TestStatic(t *testing.T) {
	cat, err := NewStatic(nil).Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Snake", cat.Species[0].CommonName)

	custom := &Catalog{Species: []model.Species{{CommonName: "Otter", RiskLevel: model.RiskLow}}}
	cat, err = NewStatic(custom).Catalog(context.Background())
	require.NoError(t, err)
	assert.Same(t, custom, cat)
}
