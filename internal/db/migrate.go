package db

import (
	"context"
	"fmt"

	"github.com/ujjwalpathaak/ai-code-editor/internal/snippet"

	"github.com/rs/zerolog/log"
)

// Migrate runs database migrations
func Migrate() error {
	if err := AppDb.AutoMigrate(&snippet.Snippet{}); err != nil {
		return fmt.Errorf("migrate snippets: %w", err)
	}

	log.Info().Msg("Database schema migrated successfully")
	return nil
}

// WelcomeCode is the buffer new editors start with
const WelcomeCode = "// Write your code here..."

// SeedData stores the welcome buffer once so /loadCode/1 has something to
// return on a fresh development database.
func SeedData(ctx context.Context) {
	var count int64
	if err := AppDb.WithContext(ctx).Model(&snippet.Snippet{}).Count(&count).Error; err != nil {
		log.Warn().Err(err).Msg("failed to count snippets")
		return
	}
	if count > 0 {
		log.Debug().Int64("snippets", count).Msg("seed skipped, snippets already exist")
		return
	}

	repo := snippet.NewRepository(AppDb)
	welcome := &snippet.Snippet{Code: WelcomeCode, User: "system", Version: 1}
	if err := repo.Create(ctx, welcome); err != nil {
		log.Warn().Err(err).Msg("error creating welcome snippet")
		return
	}
	log.Info().Uint64("id", welcome.ID).Msg("Created welcome snippet")
}
