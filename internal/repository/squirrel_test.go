package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%ada%", containsPattern("ada"))
	assert.Equal(t, `%100\% co\_op%`, containsPattern("100% co_op"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}

func TestWithSearch(t *testing.T) {
	query, args, err := withSearch(psql.Select("id").From("contacts"), "").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM contacts", query)
	assert.Empty(t, args)

	query, args, err = withSearch(psql.Select("id").From("contacts"), "ada").ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM contacts WHERE (first_name ILIKE $1 OR last_name ILIKE $2 OR email ILIKE $3 OR company ILIKE $4)",
		query)
	assert.Equal(t, []interface{}{"%ada%", "%ada%", "%ada%", "%ada%"}, args)
}

func TestSearchFilter(t *testing.T) {
	assert.Empty(t, searchFilter(""))

	filter := searchFilter("a.b")
	or, ok := filter["$or"]
	require.True(t, ok)
	assert.Len(t, or, 4)
}
