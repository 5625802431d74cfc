// jobflow 求职申请看板的命令行和本地看板服务
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/service"
	"jobflow-dashboard/internal/shell"
	"jobflow-dashboard/internal/tracing"
	"jobflow-dashboard/internal/validation"

	"github.com/spf13/pflag"
)

var version = "1.0.0" //nolint:gochecknoglobals

// errNotLoggedIn 受保护的命令在没有令牌时返回
var errNotLoggedIn = errors.New("You are not logged in. Run: jobflow login -e <email> -p <password>")

// errUsage 参数错误，已经打印过用法
var errUsage = errors.New("usage")

// app 一次命令执行的上下文
type app struct {
	cfg    *config.Config
	svc    *service.Services
	guard  *shell.Guard
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name      string
	summary   string
	protected bool
	// noServices 命令不需要后端和本地存储
	noServices bool
	run        func(ctx context.Context, a *app, args []string) error
}

func commands() map[string]command {
	list := []command{
		{name: "serve", summary: "Start the local dashboard", run: cmdServe},
		{name: "login", summary: "Sign in and store the session token", run: cmdLogin},
		{name: "signup", summary: "Create an account and store the session token", run: cmdSignup},
		{name: "logout", summary: "Remove the stored session", run: cmdLogout},
		{name: "whoami", summary: "Show the signed-in account", run: cmdWhoami},
		{name: "stats", summary: "Show dashboard statistics", protected: true, run: cmdStats},
		{name: "urls", summary: "List, add, delete or open job URLs", protected: true, run: cmdURLs},
		{name: "applications", summary: "List applications", protected: true, run: cmdApplications},
		{name: "preferences", summary: "Show or update job preferences", protected: true, run: cmdPreferences},
		{name: "profile", summary: "Show or update the career profile", protected: true, run: cmdProfile},
		{name: "discover", summary: "Search for new job listings", protected: true, run: cmdDiscover},
		{name: "jobs", summary: "List the last discovered jobs", protected: true, run: cmdJobs},
		{name: "auto-apply", summary: "Send selected jobs to the browser extension and open them", protected: true, run: cmdAutoApply},
		{name: "upload", summary: "Upload a CV (PDF or Word)", protected: true, run: cmdUpload},
		{name: "export", summary: "Export job URLs and applications (json, csv, xlsx)", protected: true, run: cmdExport},
		{name: "settings", summary: "Show, update or clear local settings", protected: true, run: cmdSettings},
		{name: "init-config", summary: "Write a sample config file", noServices: true, run: cmdInitConfig},
		{name: "version", summary: "Print the version", noServices: true, run: cmdVersion},
	}
	m := make(map[string]command, len(list))
	for _, c := range list {
		m[c.name] = c
	}
	return m
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 解析参数并执行子命令，返回退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("jobflow", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "", "Path to config file (default: search config.yaml)")
	logLevel := global.String("log-level", "", "Override the log level (debug, info, warn, error)")
	global.Usage = func() { usage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr, global)
		return 2
	}

	cmd, ok := commands()[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n\n", rest[0])
		usage(stderr, global)
		return 2
	}

	a := &app{stdout: stdout, stderr: stderr}
	if !cmd.noServices {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "加载配置失败: %v\n", err)
			return 1
		}
		if *logLevel != "" {
			cfg.Logger.Level = *logLevel
		}
		logger.Init(logger.Config{
			Level:        cfg.Logger.Level,
			Format:       cfg.Logger.Format,
			TimeFormat:   cfg.Logger.TimeFormat,
			ReportCaller: cfg.Logger.ReportCaller,
		})

		shutdown, err := tracing.Init(ctx, cfg.Tracing)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化链路追踪失败，继续运行")
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}

		svc, err := service.Build(cfg)
		if err != nil {
			fmt.Fprintf(stderr, "初始化失败: %v\n", err)
			return 1
		}
		defer svc.Close()

		a.cfg = cfg
		a.svc = svc
		a.guard = shell.NewGuard(svc.Tokens())
	}

	if cmd.protected {
		ok, err := a.guard.Authenticated(ctx)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if !ok {
			fmt.Fprintln(stderr, errNotLoggedIn)
			return 1
		}
	}

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, pflag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(stderr, describe(err))
		return 1
	}
	return 0
}

// describe 命令失败时给用户看的信息
func describe(err error) string {
	if verrs, ok := validation.AsErrors(err); ok {
		return "Invalid input: " + verrs.Error()
	}
	if apiclient.IsUnauthorized(err) {
		return apiclient.UserMessage(err) + " Run: jobflow login"
	}
	return apiclient.UserMessage(err)
}

func usage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: jobflow [global flags] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, cmds[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	global.PrintDefaults()
}
