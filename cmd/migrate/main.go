package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/facturo/backend/internal/infrastructure/config"
	"github.com/facturo/backend/internal/infrastructure/logger"
	"github.com/facturo/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		dir      string
		logLevel string
		confirm  bool
	)
	flag.StringVar(&dir, "path", "", "migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.BoolVar(&confirm, "confirm", false, "confirm destructive commands")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(args[0], args[1:], resolveDir(dir), confirm, log); err != nil {
		log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(command string, args []string, dir string, confirm bool, log *zap.Logger) error {
	// create and list work on the filesystem alone
	switch command {
	case "create":
		if len(args) < 1 {
			return fmt.Errorf("usage: migrate create <name>")
		}
		pair, err := migration.Create(dir, args[0])
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.String("up", pair.UpPath),
			zap.String("down", pair.DownPath),
		)
		return nil

	case "list":
		bases, err := migration.List(dir)
		if err != nil {
			return err
		}
		if len(bases) == 0 {
			log.Info("No migrations found", zap.String("dir", dir))
			return nil
		}
		for _, base := range bases {
			fmt.Println(base)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		n, err := intArg(args, "migrate step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)

	case "goto":
		v, err := intArg(args, "migrate goto <version>")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version cannot be negative")
		}
		return m.To(uint(v))

	case "force":
		v, err := intArg(args, "migrate force <version>")
		if err != nil {
			return err
		}
		if !confirm {
			return fmt.Errorf("force rewrites the schema version; rerun with -confirm")
		}
		return m.Force(v)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
		return nil

	case "drop":
		if !confirm {
			return fmt.Errorf("drop destroys all data; rerun with -confirm")
		}
		return m.Drop()

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// resolveDir falls back to ./migrations, then to the directory two levels
// above the executable so the built binary finds them from bin/.
func resolveDir(dir string) string {
	if dir != "" {
		return absOrSelf(dir)
	}
	if _, err := os.Stat(defaultMigrationsDir); err == nil {
		return absOrSelf(defaultMigrationsDir)
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsDir)
		if _, err := os.Stat(candidate); err == nil {
			return absOrSelf(candidate)
		}
	}
	return absOrSelf(defaultMigrationsDir)
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func intArg(args []string, usageHint string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("usage: %s", usageHint)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", args[0])
	}
	return n, nil
}

func usage() {
	fmt.Println(`Usage: migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  step <n>          Apply n migrations; negative n rolls back
  goto <version>    Migrate up or down to a specific version
  version           Show the current schema version
  force <version>   Overwrite the recorded version (requires -confirm)
  drop              Drop every database object (requires -confirm)
  create <name>     Create an empty up/down migration pair
  list              List migrations in the migrations directory

Flags:
  -path string       Migrations directory (default: ./migrations)
  -log-level string  Log level: debug, info, warn, error (default: info)
  -confirm           Confirm destructive commands

Database connection comes from the server configuration:
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE`)
}
