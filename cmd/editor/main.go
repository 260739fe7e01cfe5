// editor is a headless client for the EnvironmentCreator API. It logs in, opens an environment and replays a
// YAML script of placements and drags through the same sync controllers the graphical editor uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/apiclient"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/config"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/editor"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	baseURL        string
	username       string
	password       string
	register       bool
	environmentID  int
	newEnvironment string
	width, height  int
	scriptPath     string
	workers        int
	debug          bool
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	var opts options
	flagSet := pflag.NewFlagSet("editor", pflag.ContinueOnError)
	flagSet.StringVar(&opts.baseURL, "base-url", cfg.EditorBaseURL, "API base URL")
	flagSet.StringVarP(&opts.username, "username", "u", "", "account username")
	flagSet.StringVarP(&opts.password, "password", "p", os.Getenv("EDITOR_PASSWORD"), "account password (default $EDITOR_PASSWORD)")
	flagSet.BoolVar(&opts.register, "register", false, "register the account before logging in")
	flagSet.IntVarP(&opts.environmentID, "environment", "e", 0, "environment to open (overrides the script)")
	flagSet.StringVar(&opts.newEnvironment, "new-environment", "", "create an environment with this name and open it")
	flagSet.IntVar(&opts.width, "width", 100, "width of a new environment")
	flagSet.IntVar(&opts.height, "height", 50, "height of a new environment")
	flagSet.StringVarP(&opts.scriptPath, "script", "s", "", "YAML script to replay")
	flagSet.IntVar(&opts.workers, "workers", cfg.EditorSaveWorkers, "concurrent saves")
	flagSet.BoolVar(&opts.debug, "debug", cfg.LogDebug, "debug logging")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.username == "" || opts.password == "" {
		return errors.New("--username and --password are required")
	}

	logger, err := log.NewLogger(cfg.LogDevelopment, opts.debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return replay(ctx, opts, logger)
}

func replay(ctx context.Context, opts options, logger *log.Logger) error {
	var script *Script
	if opts.scriptPath != "" {
		var err error
		if script, err = loadScript(opts.scriptPath); err != nil {
			return err
		}
	} else {
		script = &Script{}
	}

	webClient := apiclient.NewWebClient(opts.baseURL, logger.Named("api"))
	users := apiclient.NewUserApiClient(webClient)
	environments := apiclient.NewEnvironmentApiClient(webClient)
	objects := apiclient.NewObjectApiClient(webClient)

	if opts.register {
		if err := users.Register(ctx, opts.username, opts.password); err != nil && !apiclient.IsStatus(err, http.StatusConflict) {
			return fmt.Errorf("registering %s: %w", opts.username, err)
		}
	}
	token, err := users.Login(ctx, opts.username, opts.password)
	if err != nil {
		return fmt.Errorf("logging in as %s: %w", opts.username, err)
	}

	environmentID := script.Environment
	if opts.environmentID > 0 {
		environmentID = opts.environmentID
	}
	if opts.newEnvironment != "" {
		env, err := environments.Create(ctx, environment.Environment{Name: opts.newEnvironment, MaxWidth: opts.width, MaxHeight: opts.height})
		if err != nil {
			return fmt.Errorf("creating environment %q: %w", opts.newEnvironment, err)
		}
		fmt.Printf("created environment %d %q\n", env.ID, env.Name)
		environmentID = env.ID
	}
	if environmentID <= 0 {
		list, err := environments.List(ctx)
		if err != nil {
			return err
		}
		for _, env := range list {
			fmt.Printf("%d\t%s\t%dx%d\n", env.ID, env.Name, env.MaxWidth, env.MaxHeight)
		}
		return nil
	}

	session := editor.Session{Token: token, EnvironmentID: environmentID}
	coordinator, err := editor.NewSceneCoordinator(session, objects, logger.Named("editor"), editor.WithSaveWorkers(opts.workers))
	if err != nil {
		return err
	}
	report, err := coordinator.LoadEnvironment(ctx, environmentID)
	if err != nil {
		return err
	}
	fmt.Printf("environment %d: %d objects loaded, %d skipped\n", environmentID, report.Loaded, len(report.Skipped))

	return runSteps(ctx, coordinator, script.Steps)
}

func runSteps(ctx context.Context, coordinator *editor.SceneCoordinator, steps []Step) error {
	named := make(map[string]*editor.ObjectController)
	for i, step := range steps {
		switch step.Action {
		case actionPlace:
			ctrl, err := coordinator.Place(step.Prefab, step.Transform())
			if err != nil {
				return err
			}
			named[step.Name] = ctrl
			coordinator.Select(ctrl)
		case actionMove:
			ctrl := named[step.Name]
			coordinator.Select(ctrl)
			ctrl.SetTransform(step.Transform())
		case actionRelease:
			coordinator.Select(named[step.Name])
			if err := coordinator.EndInteraction(ctx); err != nil {
				fmt.Printf("step %d: release of %s failed: %v\n", i+1, step.Name, err)
			}
		case actionSave:
			printReport(coordinator.SaveAll(ctx))
		}
	}

	for name, ctrl := range named {
		fmt.Printf("%s\tid=%d\t%s\n", name, ctrl.ID(), ctrl.State())
	}
	if pending := coordinator.Pending(); len(pending) > 0 {
		return fmt.Errorf("%d objects were not saved", len(pending))
	}
	return nil
}

func printReport(report editor.SaveReport) {
	fmt.Printf("saved %d of %d objects\n", report.Saved(), len(report.Results))
	for _, res := range report.Failed() {
		fmt.Printf("  object %d: %v\n", res.ID, res.Err)
	}
}
