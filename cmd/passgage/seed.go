package main

import (
	"context"
	"flag"
	"log/slog"
	"strings"
	"time"

	"github.com/passgage/passgage-go/config"
	"github.com/passgage/passgage-go/internal/domain/entity"
	"github.com/passgage/passgage-go/internal/domain/repository"
	"github.com/passgage/passgage-go/internal/domain/service"
	"github.com/passgage/passgage-go/internal/infra/auth"
	logs "github.com/passgage/passgage-go/internal/infra/log"
	"github.com/passgage/passgage-go/internal/infra/persistence/model"
	"github.com/passgage/passgage-go/internal/infra/persistence/postgres"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed file records. Companies and users are matched by ID and email,
// branches by ID when one is given; existing rows are updated in place so
// the command can be re-run safely.
type seedData struct {
	Companies []seedCompany `json:"companies" yaml:"companies"`
	Users     []seedUser    `json:"users" yaml:"users"`
	Branches  []seedBranch  `json:"branches" yaml:"branches"`
}

type seedCompany struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type seedUser struct {
	Email    string `json:"email" yaml:"email"`
	FullName string `json:"fullName" yaml:"fullName"`
	Password string `json:"password" yaml:"password"`
	Company  string `json:"company" yaml:"company"`
	JobTitle string `json:"jobTitle" yaml:"jobTitle"`
	GSM      string `json:"gsm" yaml:"gsm"`
}

type seedBranch struct {
	ID        string  `json:"id" yaml:"id"`
	Company   string  `json:"company" yaml:"company"`
	Title     string  `json:"title" yaml:"title"`
	Address   string  `json:"address" yaml:"address"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	GeofenceM float64 `json:"geofenceM" yaml:"geofenceM"`
	QRCode    string  `json:"qrCode" yaml:"qrCode"`
	NFCTagID  string  `json:"nfcTagId" yaml:"nfcTagId"`
	Inactive  bool    `json:"inactive" yaml:"inactive"`
}

// companyStore persists companies. Companies have no repository of their
// own; the seeder is their single writer.
type companyStore interface {
	Save(ctx context.Context, company *entity.Company) error
}

type gormCompanyStore struct {
	db *gorm.DB
}

func (s gormCompanyStore) Save(ctx context.Context, company *entity.Company) error {
	companyM := &model.CompanyModel{ID: company.ID, Name: company.Name}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(companyM).Error
}

// seedStores bundles the dependencies applySeed writes through.
type seedStores struct {
	companies companyStore
	users     repository.UserRepository
	branches  repository.BranchRepository
	hasher    service.PasswordHasher
	logger    *slog.Logger
}

func runSeedCommand(args []string) error {
	cmd := flag.NewFlagSet("seed", flag.ExitOnError)
	path := cmd.String("file", "", "Path to the seed YAML file")
	_ = cmd.Parse(args)

	if *path == "" {
		return errors.New("seed requires -file")
	}

	data, err := loadSeedFile(*path)
	if err != nil {
		return err
	}

	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}

	db, err := postgres.Connect(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}
	defer func() { _ = sqlDB.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return applySeed(ctx, seedStores{
		companies: gormCompanyStore{db: db},
		users:     postgres.NewUserRepository(db),
		branches:  postgres.NewBranchRepository(db),
		hasher:    auth.NewBcryptHasher(cfg),
		logger:    logger,
	}, data)
}

func loadSeedFile(path string) (*seedData, error) {
	koanfInstance := koanf.New(".")

	if err := koanfInstance.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read seed file %s failed", path)
	}

	data := new(seedData)
	if err := koanfInstance.UnmarshalWithConf("", data, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           data,
			WeaklyTypedInput: true,
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal seed file %s failed", path)
	}

	return data, nil
}

// applySeed upserts the seed records in dependency order: companies first,
// then the users and branches that reference them.
func applySeed(ctx context.Context, stores seedStores, data *seedData) error {
	for _, company := range data.Companies {
		companyID, err := uuid.Parse(company.ID)
		if err != nil {
			return errors.Wrapf(err, "invalid company id %q", company.ID)
		}

		if err := stores.companies.Save(ctx, &entity.Company{ID: companyID, Name: company.Name}); err != nil {
			return errors.Wrapf(err, "failed to save company %q", company.Name)
		}
	}

	for _, user := range data.Users {
		if err := seedUserRecord(ctx, stores, user); err != nil {
			return err
		}
	}

	for _, branch := range data.Branches {
		if err := seedBranchRecord(ctx, stores, branch); err != nil {
			return err
		}
	}

	stores.logger.Info("Seed applied",
		slog.Int("companies", len(data.Companies)),
		slog.Int("users", len(data.Users)),
		slog.Int("branches", len(data.Branches)))

	return nil
}

func seedUserRecord(ctx context.Context, stores seedStores, seed seedUser) error {
	companyID, err := uuid.Parse(seed.Company)
	if err != nil {
		return errors.Wrapf(err, "invalid company id %q for user %q", seed.Company, seed.Email)
	}

	existing, err := stores.users.FindByEmail(ctx, seed.Email)
	switch {
	case err == nil:
		existing.FullName = seed.FullName
		existing.Company = entity.Company{ID: companyID}
		existing.JobTitle = seed.JobTitle
		existing.GSM = seed.GSM
		if seed.Password != "" {
			hash, hashErr := stores.hasher.Hash(seed.Password)
			if hashErr != nil {
				return errors.Wrapf(hashErr, "failed to hash password for user %q", seed.Email)
			}
			existing.PasswordHash = hash
		}

		if err := stores.users.Update(ctx, existing); err != nil {
			return errors.Wrapf(err, "failed to update user %q", seed.Email)
		}

		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		if seed.Password == "" {
			return errors.Errorf("new user %q requires a password", seed.Email)
		}

		hash, hashErr := stores.hasher.Hash(seed.Password)
		if hashErr != nil {
			return errors.Wrapf(hashErr, "failed to hash password for user %q", seed.Email)
		}

		newUser := &entity.User{
			Email:        seed.Email,
			FullName:     seed.FullName,
			Company:      entity.Company{ID: companyID},
			JobTitle:     seed.JobTitle,
			GSM:          seed.GSM,
			PasswordHash: hash,
		}
		if err := stores.users.Create(ctx, newUser); err != nil {
			return errors.Wrapf(err, "failed to create user %q", seed.Email)
		}

		return nil
	default:
		return errors.Wrapf(err, "failed to look up user %q", seed.Email)
	}
}

func seedBranchRecord(ctx context.Context, stores seedStores, seed seedBranch) error {
	companyID, err := uuid.Parse(seed.Company)
	if err != nil {
		return errors.Wrapf(err, "invalid company id %q for branch %q", seed.Company, seed.Title)
	}

	branch := &entity.Branch{
		CompanyID: companyID,
		Title:     seed.Title,
		Address:   seed.Address,
		Latitude:  seed.Latitude,
		Longitude: seed.Longitude,
		GeofenceM: seed.GeofenceM,
		QRCode:    seed.QRCode,
		NFCTagID:  seed.NFCTagID,
		IsActive:  !seed.Inactive,
	}

	if seed.ID == "" {
		if err := stores.branches.Create(ctx, branch); err != nil {
			return errors.Wrapf(err, "failed to create branch %q", seed.Title)
		}

		return nil
	}

	branchID, err := uuid.Parse(seed.ID)
	if err != nil {
		return errors.Wrapf(err, "invalid branch id %q", seed.ID)
	}
	branch.ID = branchID

	_, err = stores.branches.FindByID(ctx, branchID)
	switch {
	case err == nil:
		if err := stores.branches.Update(ctx, branch); err != nil {
			return errors.Wrapf(err, "failed to update branch %q", seed.Title)
		}

		return nil
	case errors.Is(err, repository.ErrBranchNotFound):
		if err := stores.branches.Create(ctx, branch); err != nil {
			return errors.Wrapf(err, "failed to create branch %q", seed.Title)
		}

		return nil
	default:
		return errors.Wrapf(err, "failed to look up branch %q", seed.Title)
	}
}
