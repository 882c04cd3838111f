package auth

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestGetToken_Env(t *testing.T) {
	t.Setenv("TADA_HOME", t.TempDir())
	t.Setenv(EnvToken, "Bearer abc")

	ti, err := GetToken()
	if err != nil {
		t.Fatal(err)
	}
	if ti == nil || ti.Token != "abc" || ti.Source != "env" {
		t.Errorf("GetToken() = %+v", ti)
	}
}

func TestSetGetDelete(t *testing.T) {
	t.Setenv("TADA_HOME", t.TempDir())
	t.Setenv(EnvToken, "")

	if ti, err := GetToken(); err != nil || ti != nil {
		t.Fatalf("GetToken() before login = (%+v, %v)", ti, err)
	}
	if err := SetToken("  bearer xyz ", nil); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	ti, err := GetToken()
	if err != nil || ti == nil {
		t.Fatalf("GetToken() = (%+v, %v)", ti, err)
	}
	if ti.Token != "xyz" || ti.Source != "file" {
		t.Errorf("token = %+v", ti)
	}
	if got := Bearer(); got != "xyz" {
		t.Errorf("Bearer() = %q", got)
	}
	if err := DeleteToken(); err != nil {
		t.Fatal(err)
	}
	if got := Bearer(); got != "" {
		t.Errorf("Bearer() after logout = %q", got)
	}
}

func TestSetToken_Empty(t *testing.T) {
	t.Setenv("TADA_HOME", t.TempDir())
	if err := SetToken("   ", nil); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("SetToken(blank) = %v, want ErrEmptyToken", err)
	}
}

func TestClaims(t *testing.T) {
	payload := `{"sub":"42"}`
	jwt := "h." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".s"
	got, ok := Claims(jwt)
	if !ok || got != payload {
		t.Errorf("Claims(jwt) = (%q, %v)", got, ok)
	}
	if _, ok := Claims("opaque-token"); ok {
		t.Error("Claims(opaque) ok = true")
	}
}
