package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModels_Latin1YDuplicados(t *testing.T) {
	// "Módem" en ISO-8859-1: ó = 0xF3
	raw := []byte("Marca;Nombre;Codigo\nHuawei;M\xf3dem HG8145;hg8145\nZTE;F660;\nHuawei;M\xf3dem HG8145 V5;HG8145\nNokia;G-140W;G140W\n")

	models, skipped, err := parseModels(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, models, 2)
	assert.Equal(t, "G140W", models[0].ItemCode)
	assert.Equal(t, "HG8145", models[1].ItemCode)
	assert.Equal(t, "Módem HG8145 V5", models[1].Name)
}

func TestWriteSQL_EscapaComillas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, []model{
		{Brand: "D'Link", Name: "DPN-R5402", ItemCode: "DPN5402"},
		{Brand: "Nokia", Name: "G-140W", ItemCode: "G140W"},
	}))
	out := buf.String()
	assert.Contains(t, out, "('D''Link', 'DPN-R5402', 'DPN5402'),\n")
	assert.Contains(t, out, "('Nokia', 'G-140W', 'G140W')\nON CONFLICT (item_code)")
	assert.Equal(t, 1, strings.Count(out, "INSERT INTO"))
}

func TestWriteSQL_SinModelos(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, nil))
	assert.NotContains(t, buf.String(), "INSERT")
}
