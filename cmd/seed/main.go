// Command seed fills a database with demo profiles for local development.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/config"
	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
	"github.com/tbourn/go-match-backend/internal/sysutil"
)

var species = []string{
	"Wolf", "Red Fox", "Arctic Fox", "Snow Leopard", "Lynx",
	"Raven", "Orca", "Coyote", "Maned Wolf", "Fennec", "Jaguar", "Barn Owl",
}

// Centred on Berlin so distance filters have something to work with.
const (
	baseLat = 52.52
	baseLon = 13.405
)

type seedOptions struct {
	driver   string
	dbPath   string
	dsn      string
	count    int
	password string
	seed     uint64
}

func main() {
	_ = godotenv.Load()
	sysutil.ConfigureLogger("info", true, "seed", os.Stderr)

	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func newRootCommand() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Insert demo profiles with photos, theriotypes and coordinates",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.driver, "driver", "", "storage driver (sqlite|mysql), defaults to DB_DRIVER")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite file path, defaults to DB_PATH")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "MySQL DSN, defaults to DB_DSN")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 25, "number of profiles to create")
	cmd.Flags().StringVar(&opts.password, "password", "password123", "password shared by every demo profile")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed for reproducible data")
	return cmd
}

func run(ctx context.Context, opts *seedOptions) error {
	if opts.count <= 0 {
		return fmt.Errorf("--count must be positive, got %d", opts.count)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dbCfg := cfg.DB
	dbCfg.Driver = sysutil.FirstNonEmpty(opts.driver, dbCfg.Driver)
	dbCfg.Path = sysutil.FirstNonEmpty(opts.dbPath, dbCfg.Path)
	dbCfg.DSN = sysutil.FirstNonEmpty(opts.dsn, dbCfg.DSN)

	db, err := repo.Open(dbCfg, false)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	start := time.Now().UTC()
	for i := 0; i < opts.count; i++ {
		u := demoUser(rng, i, string(hash))
		if err := insertProfile(ctx, db, u, rng); err != nil {
			return fmt.Errorf("profile %s: %w", u.Username, err)
		}
	}

	log.Info().
		Int("profiles", opts.count).
		Str("driver", dbCfg.Driver).
		Dur("took", time.Since(start)).
		Msg("seed complete")
	return nil
}

func demoUser(rng *rand.Rand, i int, hash string) domain.User {
	// Ages 18 to 45 depending on the birthday, stored at UTC midnight.
	age := 19 + rng.IntN(27)
	birth := time.Date(time.Now().Year()-age, time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)

	// Roughly within 60km of the base point.
	lat := baseLat + (rng.Float64()-0.5)*1.0
	lon := baseLon + (rng.Float64()-0.5)*1.6

	username := fmt.Sprintf("demo%03d", i+1)
	now := time.Now().UTC().Add(-time.Duration(i) * time.Minute)
	return domain.User{
		ID:           uuid.NewString(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: hash,
		DisplayName:  fmt.Sprintf("Demo %d", i+1),
		Bio:          "Seeded profile.",
		BirthDate:    &birth,
		Latitude:     &lat,
		Longitude:    &lon,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func insertProfile(ctx context.Context, db *gorm.DB, u domain.User, rng *rand.Rand) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		photos := 1 + rng.IntN(3)
		for p := 0; p < photos; p++ {
			photo := domain.Photo{
				ID:        uuid.NewString(),
				UserID:    u.ID,
				URL:       fmt.Sprintf("https://picsum.photos/seed/%s-%d/600/800", u.Username, p),
				Position:  p,
				Visible:   true,
				CreatedAt: u.CreatedAt,
			}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
		}
		first := rng.IntN(len(species))
		picks := []string{species[first]}
		if rng.IntN(2) == 0 {
			picks = append(picks, species[(first+1+rng.IntN(len(species)-1))%len(species)])
		}
		for _, s := range picks {
			if _, err := repo.AddTheriotype(ctx, tx, u.ID, s); err != nil {
				return err
			}
		}
		return nil
	})
}
