package config

import (
	"testing"

	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
)

func validConfig() oracletypes.ValidationConfig {
	return oracletypes.ValidationConfig{
		oracletypes.Near: {
			Threshold: 2,
			Servers:   []string{"https://rpc.mainnet.near.org", "https://nearrpc.aurora.dev", "https://1rpc.io/near"},
		},
		oracletypes.Evm(1): {
			Threshold: 1,
			Servers:   []string{"https://eth.drpc.org"},
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingNear(t *testing.T) {
	cfg := validConfig()
	delete(cfg, oracletypes.Near)
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for a config with no NEAR entry")
	}
}

func TestValidateRejectsBareMajorityThreshold(t *testing.T) {
	cfg := validConfig()
	cfg[oracletypes.Evm(1)] = oracletypes.ChainValidationConfig{
		Threshold: 1,
		Servers:   []string{"https://eth.drpc.org", "https://cloudflare-eth.com"},
	}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for threshold == servers/2")
	}
}

func TestValidateRejectsDuplicateServers(t *testing.T) {
	cfg := validConfig()
	cfg[oracletypes.Evm(1)] = oracletypes.ChainValidationConfig{
		Threshold: 1,
		Servers:   []string{"https://eth.drpc.org", "https://eth.drpc.org"},
	}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for duplicate servers")
	}
}

func TestValidateRejectsEmptyServerList(t *testing.T) {
	cfg := validConfig()
	cfg[oracletypes.Evm(10)] = oracletypes.ChainValidationConfig{Threshold: 1}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for an empty server list")
	}
}
