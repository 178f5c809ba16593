package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	out := Table([]string{"ROUTE", "ALIAS", "POST"}, [][]string{
		{"/lobby/enter", "LobbyEnter", "true"},
		{"/health", "-", "false"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ROUTE", "ALIAS", "POST"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"/lobby/enter", "LobbyEnter", "true"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"/health", "-", "false"}, strings.Fields(lines[2]))

	col := strings.Index(lines[0], "ALIAS")
	assert.Equal(t, col, strings.Index(lines[1], "LobbyEnter"))
	assert.Equal(t, col, strings.Index(lines[2], "-"))
	assert.NotContains(t, out, "│")
}
