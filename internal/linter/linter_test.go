package linter

import (
	"context"
	"strings"
	"testing"

	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/driver"
	"github.com/agentic-research/tagsync/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_Clean(t *testing.T) {
	in := `Type;BrowseName;BrowsePath;NodeDataType;ArrayLength;SymbolName;ValueRank
FTOptix.CommunicationDriver.TagStructure;Motor;Tags/Motor;;;;
FTOptix.CODESYS.Tag;Speed;Tags/Motor/Speed;DINT;;GVL.speed;Scalar
`
	diags, err := Lint(context.Background(), strings.NewReader(in), datatype.NewResolver(nil), "Tags")
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestLint_ReportsEveryProblem(t *testing.T) {
	in := `Type;BrowseName;BrowsePath;NodeDataType;ArrayLength;SymbolName;ValueRank
FTOptix.CODESYS.Tag;A;Tags/A;Int16;;;
FTOptix.CODESYS.Tag;A;Tags/A;Int16;;;
FTOptix.CODESYS.Tag;B;Other/B;Int16;;;
FTOptix.CODESYS.Tag;C;Tags/X;Int16;;;
FTOptix.CODESYS.Tag;D;Tags/D;Nope;;;
FTOptix.Fake.Tag;E;Tags/E;Int16;;;
FTOptix.CODESYS.Tag;F;Tags/F
`
	diags, err := Lint(context.Background(), strings.NewReader(in), datatype.NewResolver(nil), "Tags")
	require.NoError(t, err)
	require.Len(t, diags, 6)

	assert.Equal(t, 3, diags[0].Line)
	assert.Contains(t, diags[0].Message, "duplicates line 2")
	assert.Equal(t, 4, diags[1].Line)
	assert.Contains(t, diags[1].Message, `does not start at "Tags"`)
	assert.Equal(t, 5, diags[2].Line)
	assert.Contains(t, diags[2].Message, "does not end with")
	assert.ErrorIs(t, diags[3].Err, datatype.ErrTypeNotFound)
	assert.ErrorIs(t, diags[4].Err, driver.ErrUnsupportedKind)
	assert.ErrorIs(t, diags[5].Err, ingest.ErrRowShape)
	assert.Equal(t, "line 8: expected 7 cells, got 3", diags[5].String())
}

func TestLint_BadHeader(t *testing.T) {
	_, err := Lint(context.Background(), strings.NewReader("Type;BrowseName\n"), nil, "")
	assert.ErrorIs(t, err, ingest.ErrMissingColumn)
}
