package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSelectOnly(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		wantOK bool
	}{
		{name: "plain select", sql: "SELECT 1", wantOK: true},
		{name: "lowercase with leading space", sql: "  select * from users  ", wantOK: true},
		{name: "join query", sql: "SELECT u.username FROM scores s JOIN users u ON u.user_id = s.user_id", wantOK: true},
		{name: "delete rejected", sql: "DELETE FROM users", wantOK: false},
		{name: "update rejected", sql: "UPDATE scores SET score = 0", wantOK: false},
		{name: "insert rejected", sql: "INSERT INTO users (username) VALUES ('x')", wantOK: false},
		{name: "drop rejected", sql: "DROP TABLE scores", wantOK: false},
		{name: "cte rejected by prefix gate", sql: "WITH t AS (SELECT 1) SELECT * FROM t", wantOK: false},
		{name: "select prefix abuse rejected", sql: "selection_sort()", wantOK: false},
		{name: "empty rejected", sql: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, detail := ValidateSelectOnly(tt.sql)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "ok", detail)
			} else {
				assert.Equal(t, "only SELECT is allowed", detail)
			}
		})
	}
}
