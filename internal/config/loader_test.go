package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("DM_TEST_HOST", "10.0.0.5")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "set variable wins", in: "host: ${DM_TEST_HOST}", want: "host: 10.0.0.5"},
		{name: "set variable beats default", in: "host: ${DM_TEST_HOST:fallback}", want: "host: 10.0.0.5"},
		{name: "default used when unset", in: "port: ${DM_TEST_PORT:5432}", want: "port: 5432"},
		{name: "empty default", in: "password: ${DM_TEST_PASSWORD:}", want: "password: "},
		{name: "unset without default kept as is", in: "key: ${DM_TEST_MISSING}", want: "key: ${DM_TEST_MISSING}"},
		{name: "multiple placeholders", in: "${DM_TEST_HOST}:${DM_TEST_PORT:6379}", want: "10.0.0.5:6379"},
		{name: "no placeholder", in: "plain: value", want: "plain: value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	v := viper.New()
	applyDefaults(v)

	assert.Equal(t, 8080, v.GetInt("server.http.port"))
	assert.Equal(t, "L2", v.GetString("vector.milvus.metric_type"))
	assert.Equal(t, 1536, v.GetInt("embedding.dimension"))
	assert.Equal(t, "ocr_scan", v.GetString("retrieval.ocr_domain"))
	assert.Equal(t, 5, v.GetInt("retrieval.top_k"))
	assert.True(t, v.GetBool("security.rate_limit.enabled"))
}
