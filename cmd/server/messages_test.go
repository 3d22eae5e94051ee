package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shrikavin.dev/internal/models"
	"shrikavin.dev/internal/storage/sqlite"
)

func TestShowMessage(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "messages.db"))
	require.NoError(t, err)
	defer store.Close()

	msg := models.NewContactMessage(models.ContactDraft{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Hello",
		Message: "Great portfolio!",
	}, "hash", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveMessage(ctx, msg))

	var out bytes.Buffer
	require.NoError(t, showMessage(ctx, store, msg.ID.String(), &out))
	assert.Contains(t, out.String(), "From:      Jane Doe <jane@example.com>")
	assert.Contains(t, out.String(), "Delivered: no")
	assert.Contains(t, out.String(), "Great portfolio!")

	assert.Error(t, showMessage(ctx, store, "not-a-uuid", &out))
	assert.ErrorIs(t, showMessage(ctx, store, uuid.NewString(), &out), sqlite.ErrNotFound)
}
