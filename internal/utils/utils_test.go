package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Seq      int64  `db:"seq"`
	Skipped  string `db:"-"`
	Untagged string
	hidden   string `db:"hidden"`
}

func TestStructColumns(t *testing.T) {
	r := &row{ID: "1", Name: "one", Seq: 7, hidden: "x"}

	require.Equal(t, []string{"id", "name", "seq"}, StructTagValues(r))
	require.Equal(t, map[string]any{"id": "1", "name": "one", "seq": int64(7)}, StructToMap(r))
	require.Equal(t, map[string]any{"id": "1", "name": "one"}, StructToMap(*r, "seq"))

	require.Panics(t, func() { StructTagValues("not a struct") })
}

func TestPrefixSliceOfStrings(t *testing.T) {
	require.Equal(t, []string{"d.id", "d.title"}, PrefixSliceOfStrings("d", []string{"id", "title"}))
	require.Empty(t, PrefixSliceOfStrings("d", nil))
}

func TestNanoID(t *testing.T) {
	require.Len(t, NanoID(), NanoidSize)
	require.Len(t, NanoIDSize(8), 8)
	require.NotEqual(t, NanoID(), NanoID())
}
