package bootstrap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/code-100-precent/LingRx/internal/models"
	"github.com/code-100-precent/LingRx/pkg/config"
	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/code-100-precent/LingRx/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options controls database initialization behavior
type Options struct {
	// InitSQLPath points to a .sql script run before migrations; skipped if empty
	InitSQLPath string
	// AutoMigrate migrates the models
	AutoMigrate bool
	// SeedNonProd writes demo readings outside production
	SeedNonProd bool
}

type setupStep struct {
	name string
	skip bool
	run  func(db *gorm.DB) error
}

// SetupDatabase connects, runs the optional init script, migrates and seeds
func SetupDatabase(logWriter io.Writer, opts *Options) (*gorm.DB, error) {
	if opts == nil {
		opts = &Options{AutoMigrate: true, SeedNonProd: true}
	}
	cfg := config.GlobalConfig

	db, err := utils.InitDatabase(logWriter, cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Error("init database failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
		return nil, err
	}

	steps := []setupStep{
		{name: "init sql", skip: opts.InitSQLPath == "", run: func(db *gorm.DB) error {
			return RunInitSQL(db, opts.InitSQLPath)
		}},
		{name: "migrate", skip: !opts.AutoMigrate, run: RunMigrations},
		{name: "seed", skip: !opts.SeedNonProd || cfg.IsProduction(), run: func(db *gorm.DB) error {
			return NewSeedService(db).SeedAll()
		}},
	}
	for _, step := range steps {
		if step.skip {
			continue
		}
		if err := step.run(db); err != nil {
			logger.Error("database setup failed", zap.String("step", step.name), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
		logger.Info("database setup", zap.String("step", step.name), zap.String("driver", cfg.DBDriver))
	}
	return db, nil
}

// RunInitSQL executes the statements of a .sql file in one transaction
func RunInitSQL(db *gorm.DB, sqlFilePath string) error {
	f, err := os.Open(sqlFilePath)
	if err != nil {
		return err
	}
	defer f.Close()

	stmts, err := splitStatements(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", sqlFilePath, err)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for i, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// splitStatements cuts a script on lines ending with a semicolon. Comment
// lines starting with -- or # are dropped; a final unterminated statement
// is kept.
func splitStatements(r io.Reader) ([]string, error) {
	var (
		stmts   []string
		current strings.Builder
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") || strings.HasPrefix(line, "#") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(line, ";") {
			stmts = append(stmts, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts, scanner.Err()
}

// RunMigrations migrates every model
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}
	return utils.MakeMigrates(db, []any{
		&models.Reading{},
	})
}
