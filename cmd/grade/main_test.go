package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqllab/internal/grader"
)

func TestListExercises(t *testing.T) {
	c, err := grader.DefaultCatalog()
	require.NoError(t, err)

	var out bytes.Buffer
	listExercises(&out, c, "joins")
	assert.Contains(t, out.String(), "Joins\n")
	assert.Contains(t, out.String(), "  31   [easy]")
	assert.NotContains(t, out.String(), "DDL")
}

func TestPrintVerdict(t *testing.T) {
	c, err := grader.DefaultCatalog()
	require.NoError(t, err)
	v, err := grader.New(c, nil, nil).Check(context.Background(), "1", "SELECT * FROM employees;")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printVerdict(&out, v, false))
	assert.Equal(t, "PASS exercise 1 (result): Correct!\n", out.String())

	out.Reset()
	require.NoError(t, printVerdict(&out, v, true))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, true, decoded["correct"])
	assert.Equal(t, "result", decoded["mode"])
}
