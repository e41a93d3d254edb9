package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kafka"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleActivity(t *testing.T) {
	var buf bytes.Buffer
	handler := handleActivity(zerolog.New(&buf))

	a := kafka.NewActivity(kafka.ActivityCart, "ItemAddedToCart", "visitor-1", map[string]int{"count": 2})
	value, err := json.Marshal(a)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), []byte("visitor-1"), value))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cart", line["kind"])
	assert.Equal(t, "ItemAddedToCart", line["type"])
	assert.Equal(t, "visitor-1", line["visitor"])
}

func TestHandleActivity_SkipsMalformed(t *testing.T) {
	var buf bytes.Buffer
	handler := handleActivity(zerolog.New(&buf))

	err := handler(context.Background(), []byte("k"), []byte("{not json"))

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "skipping malformed activity")
}
