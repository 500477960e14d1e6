package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	t.Run("native dsn untouched", func(t *testing.T) {
		in := "root:pw@tcp(127.0.0.1:3306)/dept?parseTime=true"
		assert.Equal(t, in, normalizeMySQLDSN(in, "", ""))
	})

	t.Run("jdbc url", func(t *testing.T) {
		got := normalizeMySQLDSN("jdbc:mysql://db:3306/dept?useSSL=false&serverTimezone=UTC", "app", "secret")
		assert.Equal(t, "app:secret@tcp(db:3306)/dept?charset=utf8mb4&loc=UTC&parseTime=true&tls=false", got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", normalizeMySQLDSN("  ", "", ""))
	})
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/dept", maskDSN("root:pw@tcp(db:3306)/dept"))
	assert.Equal(t, "host=db dbname=x", maskDSN("host=db dbname=x"))
}
