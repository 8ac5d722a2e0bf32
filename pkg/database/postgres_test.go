package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	assert.Equal(t, "postgres://x", Config{DSN: "postgres://x", Host: "ignored"}.dsn())

	got := Config{Host: "db", Port: "5432", User: "stock", Password: "pw", Name: "stockyng"}.dsn()
	assert.Equal(t, "host=db user=stock password=pw dbname=stockyng port=5432 sslmode=disable TimeZone=UTC", got)
}
