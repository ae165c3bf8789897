package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/config"
	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/llm"
	"github.com/abhisek/skillpath/internal/logging"
	"github.com/abhisek/skillpath/internal/notify"
	"github.com/abhisek/skillpath/internal/store"
	"github.com/abhisek/skillpath/internal/store/pgstore"
	"github.com/abhisek/skillpath/internal/store/redisstore"
	"github.com/abhisek/skillpath/internal/tutor"
	"github.com/abhisek/skillpath/internal/ui/theme"
)

// app holds everything a command needs. Close releases it in reverse
// order of construction.
type app struct {
	cfg        config.Config
	log        *logging.Logger
	repo       store.Repository
	catalog    *catalog.Catalog
	engine     *engine.Engine
	tutor      *tutor.Service
	dispatcher *tutor.Dispatcher
	out        io.Writer

	closers []func() error
}

// loadConfig resolves configuration and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if d, _ := cmd.Flags().GetString("store"); d != "" {
		cfg.Store.Driver = d
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return config.Config{}, fmt.Errorf("resolve DB path: %w", err)
		}
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.Path = p
	}
	return cfg, cfg.Validate()
}

func openRepository(ctx context.Context, cfg config.StoreConfig) (store.Repository, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case config.DriverPostgres:
		return pgstore.Open(ctx, pgstore.Config{URL: cfg.PostgresURL})
	default:
		return store.Open(cfg.Path)
	}
}

// openApp opens the store, builds dependencies and starts the tutor
// dispatcher.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Mode: cfg.Log.Mode, Level: cfg.Log.Level})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, out: cmd.OutOrStdout()}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	a.repo, err = openRepository(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	a.closers = append(a.closers, a.repo.Close)

	a.catalog, err = catalog.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.Dir != "" {
		if err := a.catalog.LoadDir(cfg.Catalog.Dir); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	pubs := notify.Multi{notify.NewLogPublisher(log)}
	if cfg.Notify.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Notify.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		pubs = append(pubs, notify.NewRedisPublisher(rdb, cfg.Notify.Channel, log))
	}

	a.engine, err = engine.New(engine.Options{
		Repo:      a.repo,
		Templates: a.catalog,
		Publisher: pubs,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, log)
	if err != nil {
		log.Warn("LLM provider not configured, tutor features unavailable", "error", err)
	} else {
		tcfg := tutor.DefaultConfig()
		tcfg.Workers = cfg.Tutor.Workers
		tcfg.QueueSize = cfg.Tutor.QueueSize
		if cfg.LLM.Timeout > 0 {
			tcfg.Timeout = cfg.LLM.Timeout
		}
		a.tutor = tutor.NewService(provider, tcfg)
		a.dispatcher = tutor.NewDispatcher(ctx, a.tutor, a.engine, tcfg, log)
	}

	ok = true
	return a, nil
}

// Close drains the tutor queue, then releases the store and logger.
func (a *app) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
	a.log.Sync()
}

// requireTutor returns the tutor service or a configuration hint.
func (a *app) requireTutor() (*tutor.Service, error) {
	if a.tutor == nil {
		return nil, fmt.Errorf("no LLM provider configured; set SKILLPATH_LLM_PROVIDER and an API key")
	}
	return a.tutor, nil
}

// tutorContext tags tutor calls with the learner and course they serve.
func tutorContext(ctx context.Context, inst *course.Instance) context.Context {
	return llm.WithSubject(ctx, llm.Subject{LearnerID: inst.LearnerID, CourseID: inst.ID})
}

// report prints what an operation did and queues its tutor follow-ups.
func (a *app) report(res *engine.Result) {
	if !res.Changed {
		fmt.Fprintln(a.out, theme.Hint.Render("Nothing changed."))
		return
	}
	for _, t := range res.Transitions {
		fmt.Fprintf(a.out, "Module %d: %s → %s\n", t.Module, t.From, t.To)
	}
	if res.XPGained > 0 {
		fmt.Fprintln(a.out, theme.Badge.Render(fmt.Sprintf("+%d XP", res.XPGained)))
	}
	for _, n := range res.Notifications {
		fmt.Fprintln(a.out, theme.Done.Render(n.Icon+" "+n.Title)+"  "+n.Render())
	}
	if len(res.Requests) == 0 {
		return
	}
	if a.dispatcher == nil {
		fmt.Fprintln(a.out, theme.Hint.Render("Tutor follow-ups skipped: no LLM provider configured."))
		return
	}
	n := a.dispatcher.Dispatch(res.Requests...)
	fmt.Fprintln(a.out, theme.Hint.Render(fmt.Sprintf("Queued %d tutor follow-up(s).", n)))
}

// withApp opens the app around fn.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}
