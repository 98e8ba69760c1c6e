package controllers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"Gin_postgres_redis_fleet_custody/config"
	"Gin_postgres_redis_fleet_custody/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the upload of one slot and accepts everything else.
type flakyStore struct {
	failSlot string
	objects  []string
}

func (s *flakyStore) Upload(_ context.Context, objectPath, _ string, _ []byte) (string, error) {
	s.objects = append(s.objects, objectPath)
	if s.failSlot != "" && strings.Contains(objectPath, s.failSlot) {
		return "", errors.New("bucket unavailable")
	}
	return "https://blobs.example/" + objectPath, nil
}

func evidenceUploads() []photoUpload {
	return []photoUpload{
		{Type: "frontal", Filename: "frontal.jpg", ContentType: "image/jpeg", Data: []byte("a")},
		{Type: "lateral_esquerda", Filename: "le.jpg", ContentType: "image/jpeg", Data: []byte("b")},
		{Type: "lateral_direita", Filename: "ld.jpg", ContentType: "image/jpeg", Data: []byte("c")},
		{Type: "traseira", Filename: "traseira.jpg", ContentType: "image/jpeg", Data: []byte("d")},
	}
}

func TestUploadEvidenceLenientDropsFailedSlot(t *testing.T) {
	store := &flakyStore{failSlot: "traseira"}

	rows, failures, err := uploadEvidence(context.Background(), store, wizard.ModeCheckin, config.PhotoLenient, "prot-1", evidenceUploads())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.NotEqual(t, "traseira", row.Type)
		assert.Contains(t, row.URL, "prot-1/")
	}

	require.Len(t, failures, 1)
	assert.Equal(t, "traseira", failures[0].Slot)
	assert.Contains(t, failures[0].Object, "traseira")
	assert.EqualError(t, failures[0].Err, "bucket unavailable")
	assert.Len(t, store.objects, 4)
}

func TestUploadEvidenceStrictAbortsOnFirstFailure(t *testing.T) {
	store := &flakyStore{failSlot: "lateral_esquerda"}

	rows, failures, err := uploadEvidence(context.Background(), store, wizard.ModeCheckin, config.PhotoStrict, "prot-2", evidenceUploads())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lateral_esquerda")
	assert.Nil(t, rows)
	require.Len(t, failures, 1)

	// the remaining slots are never attempted
	assert.Len(t, store.objects, 2)
}

func TestUploadEvidenceKeysObjectsByMode(t *testing.T) {
	store := &flakyStore{}

	_, _, err := uploadEvidence(context.Background(), store, wizard.ModeCheckout, config.PhotoStrict, "dev-9", evidenceUploads())
	require.NoError(t, err)
	require.Len(t, store.objects, 4)
	for _, obj := range store.objects {
		assert.True(t, strings.HasPrefix(obj, "devolucao/dev-9/"), obj)
	}
}
