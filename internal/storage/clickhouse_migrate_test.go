package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSQLStatements(t *testing.T) {
	content := `
-- header comment
CREATE TABLE a (
    id UInt64
) ENGINE = MergeTree()
ORDER BY id;

   -- indented comment
CREATE TABLE b (id UInt64) ENGINE = Memory;
SELECT 1`

	stmts := splitSQLStatements(content)
	assert.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	assert.NotContains(t, stmts[0], ";")
	assert.NotContains(t, stmts[0], "header comment")
	assert.Equal(t, "CREATE TABLE b (id UInt64) ENGINE = Memory", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])
}

func TestSplitSQLStatements_Empty(t *testing.T) {
	assert.Empty(t, splitSQLStatements("-- only comments\n\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
