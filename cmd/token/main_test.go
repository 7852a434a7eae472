package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onu-almacen-api/pkg/config"
	"github.com/jhoicas/onu-almacen-api/pkg/jwt"
)

func TestIssue(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cr3t", Expiration: 60, Issuer: "onu-almacen-api"}

	token, err := issue(cfg, "jperez", "tecnico", 0)
	require.NoError(t, err)
	actor, role, err := jwt.Parse(cfg.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, "jperez", actor)
	assert.Equal(t, "tecnico", role)

	_, err = issue(cfg, "", "admin", 0)
	assert.Error(t, err)
	_, err = issue(cfg, "jperez", "gerente", 0)
	assert.Error(t, err)
}
