package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"jobflow-dashboard/internal/config"
	"jobflow-dashboard/internal/export"
	"jobflow-dashboard/internal/logger"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/service"
	"jobflow-dashboard/internal/validation"
	"jobflow-dashboard/internal/views"
	"jobflow-dashboard/internal/web"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func cmdServe(ctx context.Context, a *app, args []string) error {
	fs := a.flags("serve")
	addr := fs.StringP("addr", "a", a.cfg.Server.Address, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.cfg.Server.Address = *addr

	hlog.SetLogger(hertzzerolog.From(logger.Component("hertz")))
	if a.cfg.Logger.Level == "debug" {
		hlog.SetLevel(hlog.LevelDebug)
	}

	srv, err := web.New(a.cfg, a.svc)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()
	fmt.Fprintf(a.stdout, "Dashboard running at http://%s (Ctrl+C to stop)\n", a.cfg.Server.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("收到退出信号，正在关闭看板服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loginFlags(a *app, name string, args []string) (validation.LoginForm, error) {
	fs := a.flags(name)
	email := fs.StringP("email", "e", "", "Account email")
	password := fs.StringP("password", "p", "", "Password (or set JOBFLOW_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return validation.LoginForm{}, err
	}
	if *password == "" {
		*password = os.Getenv("JOBFLOW_PASSWORD")
	}
	return validation.LoginForm{Email: *email, Password: *password}, nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	form, err := loginFlags(a, "login", args)
	if err != nil {
		return err
	}
	session, err := a.svc.Auth.Login(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s\n", session.Email)
	return nil
}

func cmdSignup(ctx context.Context, a *app, args []string) error {
	form, err := loginFlags(a, "signup", args)
	if err != nil {
		return err
	}
	session, err := a.svc.Auth.Signup(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Account created. Logged in as %s\n", session.Email)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.svc.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	session, err := a.svc.Auth.Session(ctx)
	if err != nil {
		return err
	}
	if !session.Authenticated {
		fmt.Fprintln(a.stdout, "Not logged in")
		return nil
	}
	fmt.Fprintln(a.stdout, session.Email)
	return nil
}

func cmdStats(ctx context.Context, a *app, _ []string) error {
	stats, err := a.svc.Stats.Get(ctx)
	if err != nil {
		return err
	}
	return views.RenderStats(a.stdout, views.StatsCards(&stats))
}

func cmdURLs(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := a.flags("urls list")
		q := fs.StringP("query", "q", "", "Filter by company, title or URL")
		status := fs.StringP("status", "s", "", "Filter by status (pending, applied, interviewed, rejected)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *status != "" {
			if _, err := models.ParseJobURLStatus(*status); err != nil {
				return err
			}
		}
		urls, err := a.svc.JobURLs.List(ctx)
		if err != nil {
			return err
		}
		return views.RenderJobURLs(a.stdout, views.FilterJobURLs(urls, *q, *status))

	case "add":
		fs := a.flags("urls add")
		company := fs.String("company", "", "Company name")
		position := fs.String("position", "", "Position title")
		location := fs.String("location", "", "Job location")
		status := fs.StringP("status", "s", string(models.JobURLPending), "Initial status")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(a.stderr, "Usage: jobflow urls add <url> [--company ...] [--position ...]")
			return errUsage
		}
		created, err := a.svc.JobURLs.Add(ctx, validation.AddJobURLForm{
			URL:      strings.TrimSpace(fs.Arg(0)),
			Company:  *company,
			Position: *position,
			Location: *location,
			Status:   *status,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Job URL added successfully (id %s)\n", created.ID)
		return nil

	case "delete":
		if len(rest) != 1 {
			fmt.Fprintln(a.stderr, "Usage: jobflow urls delete <id>")
			return errUsage
		}
		if err := a.svc.JobURLs.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Job URL deleted")
		return nil

	case "open":
		opened, err := a.svc.AutoApply.OpenURLs(ctx, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Opened %d URLs\n", opened)
		return nil

	default:
		fmt.Fprintf(a.stderr, "Unknown subcommand %q (list, add, delete, open)\n", sub)
		return errUsage
	}
}

func cmdApplications(ctx context.Context, a *app, args []string) error {
	fs := a.flags("applications")
	q := fs.StringP("query", "q", "", "Filter by company or position")
	status := fs.StringP("status", "s", "", "Filter by status (pending, interview, rejected, accepted)")
	recent := fs.Bool("recent", false, "Only show the three most recent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *status != "" {
		if _, err := models.ParseApplicationStatus(*status); err != nil {
			return err
		}
	}
	apps, err := a.svc.Applications.List(ctx)
	if err != nil {
		return err
	}
	apps = views.FilterApplications(apps, *q, *status)
	if *recent {
		apps = views.Recent(apps, 3)
	}
	return views.RenderApplications(a.stdout, apps)
}

func cmdPreferences(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "show")
	current, err := a.svc.Preferences.Get(ctx)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		return views.RenderPreferences(a.stdout, current)
	case "set":
		var base models.UserPreferences
		if current != nil {
			base = *current
		}
		fs := a.flags("preferences set")
		quals := fs.String("qualifications", base.Qualifications, "Qualifications")
		work := fs.String("work-experience", base.WorkExperience, "Work experience")
		prefs := fs.String("job-preferences", base.JobPreferences, "Job preferences")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if _, err := a.svc.Preferences.Save(ctx, validation.PreferencesForm{
			Qualifications: *quals,
			WorkExperience: *work,
			JobPreferences: *prefs,
		}); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Preferences saved")
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown subcommand %q (show, set)\n", sub)
		return errUsage
	}
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "show")
	switch sub {
	case "show":
		fs := a.flags("profile show")
		asYAML := fs.Bool("yaml", false, "Print the profile as YAML (usable with profile set -f)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		profile, err := a.svc.Profile.Get(ctx)
		if err != nil {
			return err
		}
		if *asYAML && profile != nil {
			data, err := yaml.Marshal(profile)
			if err != nil {
				return fmt.Errorf("序列化档案失败: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		}
		return views.RenderProfile(a.stdout, profile)

	case "set":
		fs := a.flags("profile set")
		file := fs.StringP("file", "f", "", "YAML file with the profile")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *file == "" {
			fmt.Fprintln(a.stderr, "Usage: jobflow profile set -f profile.yaml")
			return errUsage
		}
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("读取档案文件失败: %w", err)
		}
		var profile models.UserProfile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("解析档案文件失败: %w", err)
		}
		saved, err := a.svc.Profile.Save(ctx, validation.ProfileFormFrom(profile))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Profile saved for %s\n", saved.Name)
		return nil

	default:
		fmt.Fprintf(a.stderr, "Unknown subcommand %q (show, set)\n", sub)
		return errUsage
	}
}

func cmdDiscover(ctx context.Context, a *app, args []string) error {
	def := validation.DefaultJobSearchForm()
	fs := a.flags("discover")
	title := fs.StringP("title", "t", "", "Job title")
	location := fs.StringP("location", "l", "", "Location")
	posted := fs.String("posted-after", def.PostedAfter, "Posted within the last N days (1, 3, 7, 30)")
	remote := fs.Bool("remote", false, "Remote jobs only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.svc.Discovery.Search(ctx, validation.JobSearchForm{
		Title:       *title,
		Location:    *location,
		PostedAfter: *posted,
		Remote:      *remote,
	})
	if err != nil {
		return err
	}
	return views.RenderListings(a.stdout, resp.Jobs, nil, time.Now())
}

func cmdJobs(ctx context.Context, a *app, args []string) error {
	fs := a.flags("jobs")
	pending := fs.Bool("pending", false, "Show the jobs last sent to auto-apply instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var (
		jobs []models.JobListing
		err  error
	)
	if *pending {
		jobs, err = a.svc.AutoApply.Pending(ctx)
	} else {
		jobs, err = a.svc.Discovery.Stored(ctx)
	}
	if err != nil {
		return err
	}
	return views.RenderListings(a.stdout, jobs, nil, time.Now())
}

func cmdAutoApply(ctx context.Context, a *app, args []string) error {
	fs := a.flags("auto-apply")
	all := fs.Bool("all", false, "Select every discovered job")
	if err := fs.Parse(args); err != nil {
		return err
	}
	jobs, err := a.svc.Discovery.Stored(ctx)
	if err != nil {
		return err
	}

	selection := views.NewSelection(fs.Args()...)
	if *all {
		ids := make([]string, 0, len(jobs))
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}
		selection.ToggleAll(ids)
	}

	result, err := a.svc.AutoApply.Apply(ctx, jobs, selection.IDs())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Auto-apply started for %d jobs (%d opened)\n", len(result.Jobs), result.Opened)
	return nil
}

func cmdUpload(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "Usage: jobflow upload <file.pdf|file.docx>")
		return errUsage
	}
	f, err := service.ReadFile(args[0], a.cfg.UploadMaxBytes())
	if err != nil {
		return err
	}
	result, err := a.svc.Uploads.Upload(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Uploaded %s\n%s\n", result.FileName, result.FileURL)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := a.flags("export")
	formatName := fs.StringP("format", "f", "json", "Export format (json, csv, xlsx)")
	out := fs.StringP("out", "o", "", "Output file (default: stdout for json/csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	data, err := a.svc.Snapshot(ctx)
	if err != nil {
		return err
	}

	if format == export.FormatXLSX {
		path := *out
		if path == "" {
			path = "jobflow-export-" + data.ExportedAt.Format("2006-01-02")
		}
		saved, err := export.SaveXLSX(path, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Exported to %s\n", saved)
		return nil
	}

	if *out == "" {
		return export.Write(a.stdout, format, data)
	}
	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("创建导出文件失败: %w", err)
	}
	if err := export.Write(file, format, data); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("写入导出文件失败: %w", err)
	}
	fmt.Fprintf(a.stdout, "Exported to %s\n", *out)
	return nil
}

func cmdSettings(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "show")
	switch sub {
	case "show":
		settings, err := a.svc.Settings.Load(ctx)
		if err != nil {
			return err
		}
		return views.RenderSettings(a.stdout, settings)

	case "set":
		current, err := a.svc.Settings.Load(ctx)
		if err != nil {
			return err
		}
		form := validation.SettingsFormFrom(current)
		fs := a.flags("settings set")
		fs.StringVar(&form.APIEndpoint, "api-endpoint", form.APIEndpoint, "Preferences API endpoint")
		fs.StringVar(&form.SyncFrequency, "sync-frequency", form.SyncFrequency, "realtime, 5min, 15min, 1hour or manual")
		fs.BoolVar(&form.AutoSubmit, "auto-submit", form.AutoSubmit, "Submit applications automatically")
		fs.BoolVar(&form.Confirmations, "confirmations", form.Confirmations, "Ask before each action")
		fs.IntVar(&form.ActionDelay, "action-delay", form.ActionDelay, "Seconds between actions (1-30)")
		fs.BoolVar(&form.LocalBackup, "local-backup", form.LocalBackup, "Keep a local backup")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		saved, err := a.svc.Settings.Save(ctx, form)
		if err != nil {
			return err
		}
		return views.RenderSettings(a.stdout, saved)

	case "clear":
		fs := a.flags("settings clear")
		yes := fs.BoolP("yes", "y", false, "Confirm clearing every locally stored value, including the session")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if !*yes {
			fmt.Fprintln(a.stderr, "This removes all local data, including your session. Re-run with --yes to confirm.")
			return errUsage
		}
		if err := a.svc.Settings.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "All local data cleared")
		return nil

	default:
		fmt.Fprintf(a.stderr, "Unknown subcommand %q (show, set, clear)\n", sub)
		return errUsage
	}
}

func cmdInitConfig(_ context.Context, a *app, args []string) error {
	path := "config.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.CreateSampleConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Sample config written to %s\n", path)
	return nil
}

func cmdVersion(_ context.Context, a *app, _ []string) error {
	fmt.Fprintf(a.stdout, "jobflow %s\n", version)
	return nil
}

// subcommand 第一个参数不是 flag 时视为子命令
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}
