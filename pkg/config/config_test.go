package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamoDBConfig_Validate(t *testing.T) {
	testCases := []struct {
		name       string
		cfg        DynamoDBConfig
		wantErr    bool
		wantRegion string
		wantTable  string
	}{
		{
			name:       "defaults applied",
			cfg:        DynamoDBConfig{Timeout: time.Second},
			wantRegion: "eu-central-1",
			wantTable:  "ProductsTable",
		},
		{
			name:       "explicit values kept",
			cfg:        DynamoDBConfig{Region: "us-west-2", Table: "Catalog", Endpoint: "http://localhost:8000", Timeout: time.Second},
			wantRegion: "us-west-2",
			wantTable:  "Catalog",
		},
		{
			name:    "missing timeout",
			cfg:     DynamoDBConfig{},
			wantErr: true,
		},
		{
			name:    "relative endpoint",
			cfg:     DynamoDBConfig{Endpoint: "localhost:8000", Timeout: time.Second},
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			err := tc.cfg.Validate()
			// then
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRegion, tc.cfg.Region)
			assert.Equal(t, tc.wantTable, tc.cfg.Table)
		})
	}
}

func TestHTTPConfig_Validate(t *testing.T) {
	valid := func() HTTPConfig {
		var c HTTPConfig
		c.Timeout.Read = time.Second
		c.Timeout.Write = time.Second
		c.Timeout.Idle = time.Second
		c.Timeout.ReadHeader = time.Second
		return c
	}

	t.Run("port defaults to 3000", func(t *testing.T) {
		c := valid()
		require.NoError(t, c.Validate())
		assert.Equal(t, 3000, c.Port)
	})
	t.Run("port out of range", func(t *testing.T) {
		c := valid()
		c.Port = 70000
		assert.Error(t, c.Validate())
	})
	t.Run("missing write timeout", func(t *testing.T) {
		c := valid()
		c.Timeout.Write = 0
		assert.Error(t, c.Validate())
	})
}

func TestStoreConfig_Validate(t *testing.T) {
	testCases := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "", want: StoreDriverDynamoDB},
		{driver: "memory", want: StoreDriverMemory},
		{driver: "dynamodb", want: StoreDriverDynamoDB},
		{driver: "postgres", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.driver, func(t *testing.T) {
			c := StoreConfig{Driver: tc.driver}
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Driver)
		})
	}
}

func TestLogConfig_Validate(t *testing.T) {
	c := LogConfig{Level: "DEBUG"}
	require.NoError(t, c.Validate())
	assert.Equal(t, "debug", c.Level)

	c = LogConfig{}
	require.NoError(t, c.Validate())
	assert.Equal(t, "info", c.Level)

	c = LogConfig{Level: "trace"}
	assert.Error(t, c.Validate())
}

func TestResilienceConfig_Validate(t *testing.T) {
	disabled := ResilienceConfig{}
	require.NoError(t, disabled.Validate())

	c := ResilienceConfig{CircuitBreaker: CircuitBreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 5,
		ErrorRatePercent:    60,
		OpenTimeout:         5 * time.Second,
	}}
	require.NoError(t, c.Validate())
	assert.Equal(t, uint32(1), c.CircuitBreaker.MaxHalfOpenRequests)

	c.CircuitBreaker.ErrorRatePercent = 120
	assert.Error(t, c.Validate())
}

func TestRuntimeConfig_Validate(t *testing.T) {
	p := PProfConfig{Enabled: true, Addr: "localhost"}
	assert.Error(t, p.Validate())
	p.Addr = "localhost:6060"
	assert.NoError(t, p.Validate())

	s := ShutdownConfig{}
	require.NoError(t, s.Validate())
	assert.Equal(t, 10*time.Second, s.Timeout)
	s.Timeout = -time.Second
	assert.Error(t, s.Validate())
}

func TestNATSConfig_Validate(t *testing.T) {
	assert.NoError(t, (&NATSConfig{}).Validate())
	assert.Error(t, (&NATSConfig{Enabled: true}).Validate())
	assert.NoError(t, (&NATSConfig{Enabled: true, Url: "nats://localhost:4222", Timeout: time.Second, Stream: "CATALOG"}).Validate())
}
