package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/erp/marketsync/internal/infrastructure/config"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/migration"
	"github.com/erp/marketsync/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

// session carries what a command may need. migrator is nil for commands
// that do not touch the database.
type session struct {
	log      *zap.Logger
	source   fs.FS
	dir      string
	migrator *migration.Migrator
}

type command struct {
	args     string
	help     string
	database bool
	run      func(s *session, args []string) error
}

var commands = map[string]command{
	"up": {help: "Apply all pending migrations", database: true,
		run: func(s *session, _ []string) error { return s.migrator.Up() }},
	"down": {help: "Roll back all migrations", database: true,
		run: func(s *session, _ []string) error { return s.migrator.Down() }},
	"step": {args: "<n>", help: "Apply n migrations (negative rolls back)", database: true,
		run: func(s *session, args []string) error {
			n, err := intArg(args)
			if err != nil {
				return err
			}
			return s.migrator.Steps(n)
		}},
	"goto": {args: "<version>", help: "Migrate to a specific version", database: true,
		run: func(s *session, args []string) error {
			v, err := intArg(args)
			if err != nil || v < 0 {
				return fmt.Errorf("%w: goto <version>", errUsage)
			}
			return s.migrator.GoTo(uint(v))
		}},
	"version": {help: "Show the current migration version", database: true,
		run: func(s *session, _ []string) error {
			version, dirty, err := s.migrator.Version()
			if err != nil {
				return err
			}
			s.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		}},
	"force": {args: "<version>", help: "Set the version after a failed run", database: true,
		run: func(s *session, args []string) error {
			v, err := intArg(args)
			if err != nil {
				return err
			}
			return s.migrator.Force(v)
		}},
	"drop": {args: "-confirm", help: "Drop every database object", database: true,
		run: func(s *session, args []string) error {
			if len(args) == 0 || strings.TrimLeft(args[0], "-") != "confirm" {
				return fmt.Errorf("%w: drop needs -confirm", errUsage)
			}
			return s.migrator.Drop()
		}},
	"create": {args: "<name> [desc]", help: "Write a new up/down pair into -path",
		run: func(s *session, args []string) error {
			if s.dir == "" || len(args) == 0 {
				return fmt.Errorf("%w: migrate -path <dir> create <name> [description]", errUsage)
			}
			description := strings.Join(args[1:], " ")
			mf, err := migration.CreateMigration(s.dir, args[0], description)
			if err != nil {
				return err
			}
			s.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath))
			return nil
		}},
	"list": {help: "List available migrations",
		run: func(s *session, _ []string) error {
			names, err := migration.ListMigrations(s.source)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println("  -", n)
			}
			return nil
		}},
}

// commandOrder fixes the order of the usage listing
var commandOrder = []string{"up", "down", "step", "goto", "version", "force", "drop", "create", "list"}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: missing number", errUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[0])
	}
	return n, nil
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	configPath := flag.String("config", "", "Config file (default: ./config.toml or /etc/marketsync)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	logCfg.ServiceName = "marketsync-migrate"
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	s := &session{log: log, source: migrations.FS, dir: *dir}
	if *dir != "" {
		s.source = os.DirFS(*dir)
	}

	if cmd.database {
		closeDB, err := s.connect(*configPath)
		if err != nil {
			log.Fatal("Failed to prepare migrator", zap.Error(err))
		}
		defer closeDB()
	}

	if err := cmd.run(s, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

// connect opens the configured database and builds the migrator
func (s *session) connect(configPath string) (func(), error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s.migrator, err = migration.New(db, s.source, s.log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return func() {
		_ = s.migrator.Close()
		_ = db.Close()
	}, nil
}

func printUsage() {
	var b strings.Builder
	b.WriteString("marketsync database migration tool\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:\n")
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(&b, "  %-22s%s\n", strings.TrimSpace(name+" "+c.args), c.help)
	}
	b.WriteString("\nFlags:\n")
	fmt.Fprint(os.Stderr, b.String())
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nDatabase settings come from config.toml or MARKETSYNC_DATABASE_* variables.")
}
