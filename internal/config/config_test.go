package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateListsMissingSecrets(t *testing.T) {
	cfg := &Config{MongoURI: "mongodb://localhost:27017", JWTSecret: "s"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOP_VNPAY_TMN_CODE")
	assert.Contains(t, err.Error(), "SHOP_VNPAY_HASH_SECRET")
	assert.NotContains(t, err.Error(), "SHOP_JWT_SECRET")
}

func TestLoadReadsPrefixedAndPlatformVariables(t *testing.T) {
	t.Setenv("SHOP_MONGO_URI", "mongodb://db:27017")
	t.Setenv("SHOP_JWT_SECRET", "secret")
	t.Setenv("VNPAY_TMN_CODE", "TMN01")
	t.Setenv("VNPAY_HASH_SECRET", "hash")
	t.Setenv("EMAIL_USER", "shop@example.com")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "TMN01", cfg.VNPay.TmnCode)
	assert.Equal(t, "hash", cfg.VNPay.HashSecret)
	assert.Equal(t, "shop@example.com", cfg.Mail.From)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "storefront", cfg.DBName)
}
