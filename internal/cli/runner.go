package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/fakeapi"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/orchestrator"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group      bool   // list grouped by pending/done
	ConfigPath string // explicit config file; "" searches ~/.tada
	// Stdin answers confirmation prompts; nil means os.Stdin.
	Stdin io.Reader
}

// session is what one invocation works with.
type session struct {
	cfg  *config.Config
	log  *log.Logger
	orch *orchestrator.Orchestrator
	in   *bufio.Reader
	opt  Options
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	case "auth":
		return doAuth(a)
	case "config":
		return doConfig(a, opt)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, closer, err := newSession(opt)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer closer.Close()

	switch cmd {
	case "ls":
		return s.doList(ctx)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: tada add <title...>")
			return 2
		}
		return s.doAdd(ctx, strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: tada done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("done: not a number: " + a[0])
			return 2
		}
		return s.doToggle(ctx, n)

	case "rm":
		fs := flag.NewFlagSet("rm", flag.ContinueOnError)
		yes := fs.Bool("y", false, "skip the confirmation prompt")
		if err := fs.Parse(a); err != nil || fs.NArg() != 1 {
			ui.Fail("usage: tada rm [-y] <index>")
			return 2
		}
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			ui.Fail("rm: not a number: " + fs.Arg(0))
			return 2
		}
		return s.doRemove(ctx, n, *yes)

	case "mv":
		if len(a) != 2 {
			ui.Fail("usage: tada mv <from> <to>")
			return 2
		}
		from, err1 := strconv.Atoi(a[0])
		to, err2 := strconv.Atoi(a[1])
		if err1 != nil || err2 != nil {
			ui.Fail("mv: indexes must be numbers")
			return 2
		}
		return s.doMove(ctx, from, to)

	case "tui":
		if err := tui.Run(ctx, s.orch); err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return 0

	case "serve":
		fs := flag.NewFlagSet("serve", flag.ContinueOnError)
		addr := fs.String("addr", "127.0.0.1:8080", "listen address")
		empty := fs.Bool("empty", false, "start with no items")
		if err := fs.Parse(a); err != nil {
			return 2
		}
		return s.doServe(ctx, *addr, *empty)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`tada - a todo list backed by a remote collection

Usage:
  tada [--config path] [--group] <subcommand> [args]

Subcommands:
  ls                 List items
  add <title...>     Add a new item (title can be multiple words)
  done <index>       Toggle done for item at 1-based index
  rm [-y] <index>    Remove item at 1-based index (asks first)
  mv <from> <to>     Move an item within this session's list
  tui                Interactive list (a add, space toggle, d delete, K/J move)
  serve [--addr a]   Run an in-memory collection for local development
  auth <login|logout|status|whoami>   Token authentication
  config <init|show|path>             Configuration file

Environment:
  TADA_BASE_URL      Collection endpoint (default https://dummyjson.com)
  TADA_TOKEN         Bearer token override
  TADA_HOME          Config and credentials directory (default ~/.tada)

Examples:
  tada add "Buy milk"
  tada ls
  tada done 2
  tada rm 3
`)
}

func newSession(opt Options) (*session, io.Closer, error) {
	cfg, err := config.Load(opt.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	ui.SetTheme(cfg.Theme)

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}

	client := remote.New(cfg.BaseURL,
		remote.WithTimeout(cfg.HTTPTimeout),
		remote.WithToken(auth.Bearer),
		remote.WithLogger(logger.WithPrefix("remote")),
	)

	in := opt.Stdin
	if in == nil {
		in = os.Stdin
	}
	s := &session{cfg: cfg, log: logger, in: bufio.NewReader(in), opt: opt}
	s.orch = orchestrator.New(client, store.New(), orchestrator.Options{
		OwnerID:           cfg.OwnerID,
		RefreshAfterWrite: cfg.RefreshAfterWrite,
		Confirm:           s.confirm,
		Logger:            logger,
	})
	return s, closer, nil
}

// confirm asks on stdin; anything but y/yes declines.
func (s *session) confirm(_ context.Context, it model.Item) bool {
	if !s.cfg.ConfirmDelete {
		return true
	}
	fmt.Printf("%s\n  %s\n[y/N] ", ui.ConfirmDelete, ui.ItemLine(0, it, 70))
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// -------------- subcommand impls ----------------

func (s *session) load(ctx context.Context) ([]model.Item, bool) {
	if s.orch.Load(ctx) != orchestrator.Succeeded {
		ui.Fail(ui.LoadError + ": " + s.orch.Store().LastError())
		return nil, false
	}
	return s.orch.Store().Visible(), true
}

// resolve turns a 1-based index into an item, printing the usual hint.
func resolve(items []model.Item, userIndex int) (model.Item, bool) {
	if userIndex < 1 || userIndex > len(items) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(items), userIndex))
		fmt.Fprintln(os.Stderr, ui.Current().Muted.Render("Hint: run `tada ls` to see valid indexes"))
		return model.Item{}, false
	}
	return items[userIndex-1], true
}

func (s *session) doList(ctx context.Context) int {
	items, ok := s.load(ctx)
	if !ok {
		return 1
	}
	s.render(items)
	return 0
}

func (s *session) render(items []model.Item) {
	t := ui.Current()
	d, p := model.Stats(items)

	var lines []string
	lines = append(lines, ui.Header(items))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")
	if s.opt.Group {
		lines = append(lines, ui.GroupLines(items)...)
	} else {
		lines = append(lines, ui.FlatLines(items)...)
	}
	lines = append(lines, "")
	if len(items) > 0 {
		lines = append(lines, t.Muted.Render(ui.Completed(items)))
	}
	lines = append(lines, t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	ui.Panel(lines)
}

func (s *session) doAdd(ctx context.Context, title string) int {
	if _, ok := s.load(ctx); !ok {
		return 1
	}
	out, err := s.orch.SubmitCreate(ctx, title)
	if err != nil {
		var ve *orchestrator.ValidationError
		if errors.As(err, &ve) {
			ui.Fail("add: " + ve.Error())
			return 2
		}
		ui.Fail("add: " + err.Error())
		return 1
	}
	if out != orchestrator.Succeeded {
		ui.Fail("add: " + s.orch.Store().LastError())
		return 1
	}
	vis := s.orch.Store().Visible()
	ui.OK(fmt.Sprintf("added #%d", vis[len(vis)-1].ID))
	return 0
}

func (s *session) doToggle(ctx context.Context, userIndex int) int {
	items, ok := s.load(ctx)
	if !ok {
		return 1
	}
	it, ok := resolve(items, userIndex)
	if !ok {
		return 2
	}
	if s.orch.Toggle(ctx, it.ID) != orchestrator.Succeeded {
		ui.Fail("done: " + s.orch.Store().LastError())
		return 1
	}
	ui.OK("toggled")
	return 0
}

func (s *session) doRemove(ctx context.Context, userIndex int, yes bool) int {
	items, ok := s.load(ctx)
	if !ok {
		return 1
	}
	it, ok := resolve(items, userIndex)
	if !ok {
		return 2
	}
	var gate orchestrator.ConfirmFunc
	if yes {
		gate = orchestrator.Approve
	}
	switch s.orch.RequestDelete(ctx, it.ID, gate) {
	case orchestrator.Succeeded:
		ui.OK("removed")
		return 0
	case orchestrator.Skipped:
		fmt.Println(ui.Current().Muted.Render("cancelled"))
		return 0
	default:
		ui.Fail("rm: " + s.orch.Store().LastError())
		return 1
	}
}

func (s *session) doMove(ctx context.Context, from, to int) int {
	items, ok := s.load(ctx)
	if !ok {
		return 1
	}
	if _, ok := resolve(items, from); !ok {
		return 2
	}
	if _, ok := resolve(items, to); !ok {
		return 2
	}
	if err := s.orch.MoveItem(from-1, to-1); err != nil {
		ui.Fail("mv: " + err.Error())
		return 1
	}
	s.render(s.orch.Store().Visible())
	fmt.Println(ui.Current().Muted.Render("Order is kept for this session only; the collection is unchanged."))
	return 0
}

func (s *session) doServe(ctx context.Context, addr string, empty bool) int {
	seed := fakeapi.DefaultSeed()
	if empty {
		seed = nil
	}
	logger := s.log
	if s.cfg.LogFile == "" {
		logger = logging.Stderr(s.cfg.LogLevel)
	}
	srv := fakeapi.New(seed, logger.WithPrefix("serve"))
	ui.OK(fmt.Sprintf("serving on http://%s (TADA_BASE_URL=http://%s)", addr, addr))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		ui.Fail("serve: " + err.Error())
		return 1
	}
	return 0
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func doAuth(a []string) int {
	if len(a) == 0 {
		ui.Fail("usage: tada auth <login|logout|status|whoami>")
		return 2
	}
	switch a[0] {
	case "login":
		return doAuthLogin()
	case "logout":
		return doAuthLogout()
	case "status":
		return doAuthStatus()
	case "whoami":
		return doAuthWhoAmI()
	}
	ui.Fail("usage: tada auth <login|logout|status|whoami>")
	return 2
}

func doAuthLogin() int {
	fmt.Print("Paste your token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		ui.Fail("read token: " + err.Error())
		return 1
	}
	if err := auth.SetToken(token, nil); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout() int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus() int {
	ti, err := auth.GetToken()
	if err != nil {
		ui.Fail("status: " + err.Error())
		return 1
	}
	if ti == nil {
		fmt.Println(ui.Current().Muted.Render("not logged in"))
		fmt.Println("Run: tada auth login")
		return 0
	}
	fmt.Printf("source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Printf("expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Println("expires: (unknown)")
	}
	fmt.Println("env override: " + auth.EnvToken)
	return 0
}

// whoami decodes a JWT locally (unsigned); opaque tokens print basic info.
func doAuthWhoAmI() int {
	ti, _ := auth.GetToken()
	if ti == nil {
		ui.Fail("not logged in. Run: tada auth login")
		return 2
	}
	if payload, ok := auth.Claims(ti.Token); ok {
		fmt.Println("JWT payload:")
		fmt.Println(payload)
		return 0
	}
	fmt.Println("Opaque token (cannot introspect locally).")
	fmt.Println("source:", ti.Source)
	return 0
}

// ---------------------------------------------------
// Config subcommands
// ---------------------------------------------------

func doConfig(a []string, opt Options) int {
	if len(a) == 0 {
		ui.Fail("usage: tada config <init|show|path>")
		return 2
	}
	path := opt.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			ui.Fail("config: " + err.Error())
			return 1
		}
		path = p
	}

	switch a[0] {
	case "init":
		fs := flag.NewFlagSet("config init", flag.ContinueOnError)
		force := fs.Bool("force", false, "overwrite an existing file")
		if err := fs.Parse(a[1:]); err != nil {
			return 2
		}
		if err := config.WriteDefault(path, *force); err != nil {
			ui.Fail("config init: " + err.Error())
			return 1
		}
		ui.OK("wrote " + path)
		return 0
	case "show":
		cfg, err := config.Load(opt.ConfigPath)
		if err != nil {
			ui.Fail("config: " + err.Error())
			return 1
		}
		if err := cfg.Encode(os.Stdout); err != nil {
			ui.Fail(err.Error())
			return 1
		}
		return 0
	case "path":
		fmt.Println(path)
		return 0
	}
	ui.Fail("usage: tada config <init|show|path>")
	return 2
}
