package config

import (
	"testing"
)

func TestSecurityConfigValidate(t *testing.T) {
	valid := SecurityConfig{Scheme: SecretSchemeBase64}
	if err := valid.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	valid.Scheme = SecretSchemeArgon2id
	if err := valid.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	valid.Scheme = "plaintext"
	if err := valid.validate(); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}

func TestPeerConfigValidate(t *testing.T) {
	disabled := PeerConfig{Enabled: false}
	if err := disabled.validate(); err != nil {
		t.Fatalf("disabled peer config should not validate ids: %v", err)
	}

	missing := PeerConfig{Enabled: true, PeerID: "a"}
	if err := missing.validate(); err == nil {
		t.Fatalf("expected error for missing remote id")
	}

	same := PeerConfig{Enabled: true, PeerID: "a", RemotePeerID: "a"}
	if err := same.validate(); err == nil {
		t.Fatalf("expected error for identical peer ids")
	}

	ok := PeerConfig{Enabled: true, PeerID: "a", RemotePeerID: "b", ChannelPrefix: "storefront:peer"}
	if err := ok.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ok.InboundChannel(); got != "storefront:peer:a" {
		t.Fatalf("unexpected inbound channel %q", got)
	}
	if got := ok.OutboundChannel(); got != "storefront:peer:b" {
		t.Fatalf("unexpected outbound channel %q", got)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	app := AppConfig{Env: "DEV"}
	if !app.IsDev() || app.IsProd() {
		t.Fatalf("expected dev environment")
	}
	app.Env = "prod"
	if app.IsDev() || !app.IsProd() {
		t.Fatalf("expected prod environment")
	}
}
