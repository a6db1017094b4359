package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/models/entities"
)

type KeysRepo struct {
	db *sqlx.DB
}

func NewApiKeysRepo(db *sqlx.DB) *KeysRepo {
	return &KeysRepo{db}
}

func (r *KeysRepo) GetStatus(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	var keyRes entities.ApiKey

	err := r.db.QueryRowxContext(ctx, constants.GetStatusByApiKey, keyHash).StructScan(&keyRes)
	if err != nil {
		return nil, err
	}

	return &keyRes, nil
}
