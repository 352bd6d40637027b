package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Tree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"seed"},
		{"tokens", "prune"},
	} {
		cmd, rest, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRootCmd_Flags(t *testing.T) {
	root := newRootCmd()

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.NotNil(t, seed.Flags().Lookup("demo"))

	prune, _, err := root.Find([]string{"tokens", "prune"})
	require.NoError(t, err)
	flag := prune.Flags().Lookup("older-than")
	require.NotNil(t, flag)
	assert.Equal(t, "0s", flag.DefValue)
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate", "up", "extra"})

	err := root.Execute()
	assert.Error(t, err)
}
