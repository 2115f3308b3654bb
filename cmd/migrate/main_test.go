package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleMigration = `-- +migrate Up
CREATE TABLE counters (
	name TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);

-- +migrate Down
DROP TABLE counters;
`

func TestExtractMigrationPart(t *testing.T) {
	up := extractMigrationPart(sampleMigration, "Up")
	assert.Contains(t, up, "CREATE TABLE counters")
	assert.NotContains(t, up, "DROP TABLE")

	down := extractMigrationPart(sampleMigration, "Down")
	assert.Contains(t, down, "DROP TABLE counters")
	assert.NotContains(t, down, "CREATE TABLE")
}

func TestExtractMigrationPart_MissingSection(t *testing.T) {
	assert.Empty(t, extractMigrationPart("SELECT 1;", "Up"))
}
