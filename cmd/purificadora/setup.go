package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/purificadora/inventario/internal/db"
	"github.com/purificadora/inventario/internal/store"
)

// openDatabase opens the configured database. Schema creation is left to
// bootstrap so that serve can log a failure instead of exiting.
func (a *app) openDatabase() (*db.DB, *store.Store, error) {
	database, err := db.Open(a.cfg.DBDriver, a.cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	a.log.Infow("database opened", "driver", a.cfg.DBDriver)
	return database, store.New(database), nil
}

// bootstrap ensures the schema, provisions the master account and seeds
// an empty jug ledger. Every step is attempted; their errors are joined.
func (a *app) bootstrap(ctx context.Context, database *db.DB, st *store.Store) error {
	if err := db.EnsureSchema(ctx, database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	var errs []error
	masterID, err := a.provisionMaster(ctx, st)
	if err != nil {
		errs = append(errs, err)
	}

	if masterID != 0 {
		seeded, err := st.SeedAltStock(ctx, masterID)
		if err != nil {
			errs = append(errs, fmt.Errorf("seeding jug stock: %w", err))
		} else if seeded {
			a.log.Infow("jug stock seeded", "stock", store.InitialAltStock)
		}
	}

	return errors.Join(errs...)
}

// provisionMaster creates the master account when no user has its email.
// A generated password is printed once, since it cannot be recovered.
func (a *app) provisionMaster(ctx context.Context, st *store.Store) (int64, error) {
	existing, err := st.GetUserByEmail(ctx, a.cfg.MasterEmail)
	if err != nil {
		return 0, fmt.Errorf("looking up master account: %w", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	password := a.cfg.MasterPassword
	generated := password == ""
	if generated {
		if password, err = generatePassword(16); err != nil {
			return 0, fmt.Errorf("generating password: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	master, created, err := st.EnsureMaster(ctx, a.cfg.MasterName, a.cfg.MasterEmail, string(hash))
	if err != nil {
		return 0, err
	}
	if created {
		a.log.Infow("master account created", "user_id", master.ID, "email", master.Email)
		if generated {
			printMasterCredentials(master.Email, password)
		}
	}
	return master.ID, nil
}

// printMasterCredentials prints the generated master password to stdout.
func printMasterCredentials(email, password string) {
	fmt.Println()
	fmt.Println("Master account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
