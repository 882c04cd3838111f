package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Makepad-fr/tada/internal/fakeapi"
)

// setup points tada at a fresh fake collection and a temp home.
func setup(t *testing.T) *fakeapi.Server {
	t.Helper()
	api := fakeapi.New(fakeapi.DefaultSeed(), nil)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	t.Setenv("TADA_HOME", t.TempDir())
	t.Setenv("TADA_BASE_URL", srv.URL)
	t.Setenv("TADA_TOKEN", "")
	return api
}

func titles(api *fakeapi.Server) []string {
	var out []string
	for _, it := range api.Items() {
		out = append(out, it.Title)
	}
	return out
}

func TestRunUsage(t *testing.T) {
	setup(t)
	cases := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, 2},
		{"help", []string{"help"}, 0},
		{"unknown", []string{"frobnicate"}, 2},
		{"add without title", []string{"add"}, 2},
		{"done not a number", []string{"done", "two"}, 2},
		{"done missing index", []string{"done"}, 2},
		{"rm extra args", []string{"rm", "1", "2"}, 2},
		{"mv one index", []string{"mv", "1"}, 2},
		{"auth without sub", []string{"auth"}, 2},
		{"config without sub", []string{"config"}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Run(tc.args, Options{}); got != tc.want {
				t.Fatalf("Run(%v) = %d, want %d", tc.args, got, tc.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	setup(t)
	if got := Run([]string{"ls"}, Options{}); got != 0 {
		t.Fatalf("ls = %d", got)
	}
	if got := Run([]string{"ls"}, Options{Group: true}); got != 0 {
		t.Fatalf("ls --group = %d", got)
	}
}

func TestListServerError(t *testing.T) {
	api := setup(t)
	api.FailNext(http.StatusServiceUnavailable, "maintenance")
	if got := Run([]string{"ls"}, Options{}); got != 1 {
		t.Fatalf("ls = %d, want 1", got)
	}
}

func TestAdd(t *testing.T) {
	api := setup(t)
	if got := Run([]string{"add", "Call", "mom"}, Options{}); got != 0 {
		t.Fatalf("add = %d", got)
	}
	ts := titles(api)
	if ts[len(ts)-1] != "Call mom" {
		t.Fatalf("titles = %v", ts)
	}
}

func TestAddValidation(t *testing.T) {
	api := setup(t)
	cases := map[string][]string{
		"blank":     {"add", "   "},
		"duplicate": {"add", "Buy", "milk"},
		"too long":  {"add", strings.Repeat("x", 101)},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if got := Run(args, Options{}); got != 2 {
				t.Fatalf("add = %d, want 2", got)
			}
		})
	}
	if n := len(api.Items()); n != 3 {
		t.Fatalf("collection changed: %d items", n)
	}
}

func TestAddServerError(t *testing.T) {
	api := setup(t)
	api.FailNextOn(http.MethodPost, http.StatusInternalServerError, "boom")
	if got := Run([]string{"add", "Call mom"}, Options{}); got != 1 {
		t.Fatalf("add = %d, want 1", got)
	}
	if n := len(api.Items()); n != 3 {
		t.Fatalf("items = %d, want 3", n)
	}
}

func TestDone(t *testing.T) {
	api := setup(t)
	if got := Run([]string{"done", "2"}, Options{}); got != 0 {
		t.Fatalf("done = %d", got)
	}
	if api.Items()[1].Done {
		t.Fatalf("item 2 still done")
	}
	if got := Run([]string{"done", "9"}, Options{}); got != 2 {
		t.Fatalf("done 9 = %d, want 2", got)
	}
	if got := Run([]string{"done", "0"}, Options{}); got != 2 {
		t.Fatalf("done 0 = %d, want 2", got)
	}
}

func TestRemove(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		api := setup(t)
		if got := Run([]string{"rm", "1"}, Options{Stdin: strings.NewReader("n\n")}); got != 0 {
			t.Fatalf("rm = %d", got)
		}
		if n := len(api.Items()); n != 3 {
			t.Fatalf("items = %d, want 3", n)
		}
	})
	t.Run("no answer", func(t *testing.T) {
		api := setup(t)
		if got := Run([]string{"rm", "1"}, Options{Stdin: strings.NewReader("")}); got != 0 {
			t.Fatalf("rm = %d", got)
		}
		if n := len(api.Items()); n != 3 {
			t.Fatalf("items = %d, want 3", n)
		}
	})
	t.Run("accepted", func(t *testing.T) {
		api := setup(t)
		if got := Run([]string{"rm", "1"}, Options{Stdin: strings.NewReader("y\n")}); got != 0 {
			t.Fatalf("rm = %d", got)
		}
		if ts := titles(api); len(ts) != 2 || ts[0] != "Walk dog" {
			t.Fatalf("titles = %v", ts)
		}
	})
	t.Run("yes flag", func(t *testing.T) {
		api := setup(t)
		if got := Run([]string{"rm", "-y", "3"}, Options{Stdin: strings.NewReader("")}); got != 0 {
			t.Fatalf("rm = %d", got)
		}
		if n := len(api.Items()); n != 2 {
			t.Fatalf("items = %d, want 2", n)
		}
	})
	t.Run("confirm disabled", func(t *testing.T) {
		api := setup(t)
		t.Setenv("TADA_CONFIRM_DELETE", "false")
		if got := Run([]string{"rm", "2"}, Options{Stdin: strings.NewReader("")}); got != 0 {
			t.Fatalf("rm = %d", got)
		}
		if n := len(api.Items()); n != 2 {
			t.Fatalf("items = %d, want 2", n)
		}
	})
	t.Run("server error", func(t *testing.T) {
		api := setup(t)
		api.FailNextOn(http.MethodDelete, http.StatusInternalServerError, "boom")
		if got := Run([]string{"rm", "-y", "1"}, Options{}); got != 1 {
			t.Fatalf("rm = %d, want 1", got)
		}
	})
}

func TestMove(t *testing.T) {
	api := setup(t)
	if got := Run([]string{"mv", "1", "3"}, Options{}); got != 0 {
		t.Fatalf("mv = %d", got)
	}
	if got := Run([]string{"mv", "1", "4"}, Options{}); got != 2 {
		t.Fatalf("mv 1 4 = %d, want 2", got)
	}
	// reorder is local to the session
	if ts := titles(api); ts[0] != "Buy milk" {
		t.Fatalf("collection reordered: %v", ts)
	}
}

func TestConfigInitShow(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	opt := Options{ConfigPath: path}

	if got := Run([]string{"config", "init"}, opt); got != 0 {
		t.Fatalf("config init = %d", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := Run([]string{"config", "init"}, opt); got != 1 {
		t.Fatalf("second init = %d, want 1", got)
	}
	if got := Run([]string{"config", "init", "--force"}, opt); got != 0 {
		t.Fatalf("init --force = %d", got)
	}
	if got := Run([]string{"config", "show"}, opt); got != 0 {
		t.Fatalf("config show = %d", got)
	}
	if got := Run([]string{"config", "path"}, opt); got != 0 {
		t.Fatalf("config path = %d", got)
	}
}

func TestBadConfig(t *testing.T) {
	setup(t)
	t.Setenv("TADA_BASE_URL", "ftp://nope")
	if got := Run([]string{"ls"}, Options{}); got != 1 {
		t.Fatalf("ls = %d, want 1", got)
	}
}

func TestAuthStatusLoggedOut(t *testing.T) {
	setup(t)
	if got := Run([]string{"auth", "status"}, Options{}); got != 0 {
		t.Fatalf("auth status = %d", got)
	}
	if got := Run([]string{"auth", "whoami"}, Options{}); got != 2 {
		t.Fatalf("auth whoami = %d, want 2", got)
	}
	if got := Run([]string{"auth", "logout"}, Options{}); got != 0 {
		t.Fatalf("auth logout = %d", got)
	}
}
