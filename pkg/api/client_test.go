package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crlszmr/vuln-scanner-sub000/config"
)

func testToken(exp time.Time) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString(
		[]byte(fmt.Sprintf(`{"sub":"admin","exp":%d}`, exp.Unix())))
	return header + "." + claims + ".sig"
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"access_token":"tok-123","token_type":"bearer"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, err := c.Login(config.Ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "tok-123" {
		t.Errorf("Login() token = %q", token)
	}
	if c.Token() != "tok-123" {
		t.Errorf("token not retained on the client")
	}
	if got := c.Header().Get("Authorization"); got != "Bearer tok-123" {
		t.Errorf("Header() Authorization = %q", got)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"Incorrect username or password"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Login(config.Ctx, "admin", "wrong"); err == nil {
		t.Fatalf("Login() accepted a rejected login")
	}
}

func TestCountParsesLocaleNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":"240.606"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.Count(config.Ctx, "/nvd/cve-count")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if got != 240606 {
		t.Errorf("Count() = %d, want 240606", got)
	}
}

func TestImportStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"running":true,"imported":"12.345","total":45678,"percentage":"27","label":"cve.inserting_items"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	status, err := c.ImportStatus(config.Ctx, "/nvd/cve-import-status")
	if err != nil {
		t.Fatalf("ImportStatus() error = %v", err)
	}

	if !status.Running {
		t.Errorf("Running = false")
	}
	if status.Imported != 12345 || status.Total != 45678 {
		t.Errorf("Imported/Total = %d/%d", status.Imported, status.Total)
	}
	if status.Percentage != 27 {
		t.Errorf("Percentage = %v", status.Percentage)
	}
	if status.Label != "cve.inserting_items" {
		t.Errorf("Label = %q", status.Label)
	}
}

func TestDeleteAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		fmt.Fprint(w, `{"status":"deleted","count":42}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.DeleteAll(config.Ctx, "/nvd/cve-delete-all"); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
}

func TestDeleteAllUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"busy"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.DeleteAll(config.Ctx, "/nvd/cve-delete-all"); err == nil {
		t.Fatalf("DeleteAll() accepted status busy")
	}
}

func TestListPlatforms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nvd/cpe-list" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"id":1,"cpe_uri":"cpe:2.3:o:linux:linux_kernel","deprecated":false,"last_modified":"2024-01-02"},
			{"id":2,"cpe_uri":"cpe:2.3:a:old:thing","deprecated":true,"last_modified":"2019-07-01"}
		]`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	platforms, err := c.ListPlatforms(config.Ctx)
	if err != nil {
		t.Fatalf("ListPlatforms() error = %v", err)
	}
	if len(platforms) != 2 {
		t.Fatalf("len = %d, want 2", len(platforms))
	}
	if platforms[0].CpeURI != "cpe:2.3:o:linux:linux_kernel" || platforms[0].Deprecated {
		t.Errorf("platform[0] = %+v", platforms[0])
	}
	if platforms[1].ID != 2 || !platforms[1].Deprecated {
		t.Errorf("platform[1] = %+v", platforms[1])
	}
}

func TestRequestsCarryToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"status":"started"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok")
	if err := c.StartImport(config.Ctx, "/nvd/cve-import-start"); err != nil {
		t.Fatalf("StartImport() error = %v", err)
	}
}

func TestErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"detail":"import already running"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.StartImport(config.Ctx, "/nvd/cve-import-start")
	if err == nil {
		t.Fatalf("StartImport() accepted a 409")
	}
	if want := "import already running"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want it to mention %q", err, want)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	got, err := TokenExpiry(testToken(exp))
	if err != nil {
		t.Fatalf("TokenExpiry() error = %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("TokenExpiry() = %s, want %s", got, exp)
	}

	if _, err := TokenExpiry("not-a-token"); err == nil {
		t.Errorf("TokenExpiry() accepted garbage")
	}
}
